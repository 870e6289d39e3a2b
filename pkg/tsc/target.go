package tsc

import (
	"fmt"
	"strings"
)

// ScriptTarget is the ECMAScript version emitted code must run on. Values
// match the TypeScript compiler API enum.
type ScriptTarget int

const (
	ES3    ScriptTarget = 0
	ES5    ScriptTarget = 1
	ES2015 ScriptTarget = 2
	ES2016 ScriptTarget = 3
	ES2017 ScriptTarget = 4
	ES2018 ScriptTarget = 5
	ES2019 ScriptTarget = 6
	ES2020 ScriptTarget = 7
	ES2021 ScriptTarget = 8
	ES2022 ScriptTarget = 9
	ES2023 ScriptTarget = 10
	ES2024 ScriptTarget = 11
	ESNext ScriptTarget = 99
	JSON   ScriptTarget = 100
	Latest              = ESNext
)

var scriptTargetNames = map[string]ScriptTarget{
	"es3":    ES3,
	"es5":    ES5,
	"es6":    ES2015,
	"es2015": ES2015,
	"es2016": ES2016,
	"es2017": ES2017,
	"es2018": ES2018,
	"es2019": ES2019,
	"es2020": ES2020,
	"es2021": ES2021,
	"es2022": ES2022,
	"es2023": ES2023,
	"es2024": ES2024,
	"esnext": ESNext,
	"latest": Latest,
	"json":   JSON,
}

func (t ScriptTarget) String() string {
	switch t {
	case ES3:
		return "ES3"
	case ES5:
		return "ES5"
	case ESNext:
		return "ESNext"
	case JSON:
		return "JSON"
	}
	if t >= ES2015 && t <= ES2024 {
		return fmt.Sprintf("ES%d", 2015+int(t-ES2015))
	}
	return fmt.Sprintf("ScriptTarget(%d)", int(t))
}

// ParseScriptTarget accepts a ScriptTarget, an integer (including JSON
// numbers) or a case-insensitive name such as "ES2015" or "esnext".
func ParseScriptTarget(v any) (ScriptTarget, error) {
	switch val := v.(type) {
	case ScriptTarget:
		return checkScriptTarget(int(val))
	case int:
		return checkScriptTarget(val)
	case int64:
		return checkScriptTarget(int(val))
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("target must be an integer, got %v", val)
		}
		return checkScriptTarget(int(val))
	case string:
		if t, ok := scriptTargetNames[strings.ToLower(val)]; ok {
			return t, nil
		}
		return 0, fmt.Errorf("unknown target %q", val)
	default:
		return 0, fmt.Errorf("target must be a string or number, got %T", v)
	}
}

func checkScriptTarget(n int) (ScriptTarget, error) {
	t := ScriptTarget(n)
	if (t >= ES3 && t <= ES2024) || t == ESNext || t == JSON {
		return t, nil
	}
	return 0, fmt.Errorf("unknown target %d", n)
}

// ModuleKind is the module system emitted code uses.
type ModuleKind int

const (
	ModuleNone     ModuleKind = 0
	CommonJS       ModuleKind = 1
	AMD            ModuleKind = 2
	UMD            ModuleKind = 3
	System         ModuleKind = 4
	ModuleES2015   ModuleKind = 5
	ModuleES2020   ModuleKind = 6
	ModuleES2022   ModuleKind = 7
	ModuleESNext   ModuleKind = 99
	Node16         ModuleKind = 100
	NodeNext       ModuleKind = 199
	ModulePreserve ModuleKind = 200
)

var moduleKindNames = map[string]ModuleKind{
	"none":     ModuleNone,
	"commonjs": CommonJS,
	"amd":      AMD,
	"umd":      UMD,
	"system":   System,
	"es6":      ModuleES2015,
	"es2015":   ModuleES2015,
	"es2020":   ModuleES2020,
	"es2022":   ModuleES2022,
	"esnext":   ModuleESNext,
	"node16":   Node16,
	"nodenext": NodeNext,
	"preserve": ModulePreserve,
}

func (m ModuleKind) String() string {
	for name, kind := range moduleKindNames {
		if kind == m && name != "es6" {
			return name
		}
	}
	return fmt.Sprintf("ModuleKind(%d)", int(m))
}

// ParseModuleKind accepts a ModuleKind, an integer or a case-insensitive name
// such as "CommonJS".
func ParseModuleKind(v any) (ModuleKind, error) {
	var n int
	switch val := v.(type) {
	case ModuleKind:
		n = int(val)
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("module must be an integer, got %v", val)
		}
		n = int(val)
	case string:
		if m, ok := moduleKindNames[strings.ToLower(val)]; ok {
			return m, nil
		}
		return 0, fmt.Errorf("unknown module %q", val)
	default:
		return 0, fmt.Errorf("module must be a string or number, got %T", v)
	}
	for _, kind := range moduleKindNames {
		if int(kind) == n {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown module %d", n)
}
