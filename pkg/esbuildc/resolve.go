package esbuildc

import (
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// resolveImport finds the file an import specifier names. Relative and
// absolute specifiers resolve through the host and the resolved file is
// returned so it can join the program. Bare specifiers are looked up in
// node_modules directories up from the importer; they resolve to "" since
// package files are not emitted.
func (p *program) resolveImport(specifier, importer string) (string, bool) {
	if isRelative(specifier) {
		base := specifier
		if !path.IsAbs(specifier) {
			base = path.Join(path.Dir(importer), specifier)
		}
		for _, candidate := range moduleCandidates(base) {
			if p.host.FileExists(candidate) {
				return candidate, true
			}
		}
		return "", false
	}

	for dir := path.Dir(importer); ; dir = path.Dir(dir) {
		for _, candidate := range packageCandidates(dir, specifier) {
			if p.host.FileExists(candidate) {
				return "", true
			}
		}
		if dir == "." || dir == "/" {
			break
		}
	}
	return "", false
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

// moduleCandidates lists the files a relative module path may name, in lookup
// order.
func moduleCandidates(base string) []string {
	var candidates []string
	switch ext := path.Ext(base); ext {
	case ".js", ".jsx":
		stem := strings.TrimSuffix(base, ext)
		candidates = append(candidates, stem+".ts", stem+".tsx", stem+".d.ts")
	case ".mjs":
		stem := strings.TrimSuffix(base, ext)
		candidates = append(candidates, stem+".mts", stem+".d.mts")
	case ".cjs":
		stem := strings.TrimSuffix(base, ext)
		candidates = append(candidates, stem+".cts", stem+".d.cts")
	case ".ts", ".tsx", ".mts", ".cts":
		candidates = append(candidates, base)
	}
	return append(candidates,
		base+".ts",
		base+".tsx",
		base+".d.ts",
		base+"/index.ts",
		base+"/index.tsx",
		base+"/index.d.ts",
	)
}

// packageCandidates lists the files that make a bare specifier resolvable
// from dir.
func packageCandidates(dir, specifier string) []string {
	pkg := path.Join(dir, "node_modules", specifier)
	types := path.Join(dir, "node_modules", "@types", typesPackageName(specifier))
	return []string{
		pkg + ".ts",
		pkg + ".d.ts",
		pkg + "/package.json",
		pkg + "/index.ts",
		pkg + "/index.d.ts",
		types + "/index.d.ts",
	}
}

// typesPackageName maps "@scope/name" to "scope__name" the way DefinitelyTyped
// names scoped packages.
func typesPackageName(specifier string) string {
	if strings.HasPrefix(specifier, "@") {
		return strings.Replace(strings.TrimPrefix(specifier, "@"), "/", "__", 1)
	}
	return specifier
}

func loaderFor(fileName string) api.Loader {
	switch path.Ext(fileName) {
	case ".tsx":
		return api.LoaderTSX
	case ".js", ".mjs", ".cjs":
		return api.LoaderJS
	case ".jsx":
		return api.LoaderJSX
	default:
		return api.LoaderTS
	}
}
