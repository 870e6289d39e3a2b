package tscnode

import (
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stackb/memcompile/pkg/procutil"
	"github.com/stackb/memcompile/pkg/tsc"
)

// EnvTypeScript names the typescript.js loaded when WithTypeScript is not
// given.
const EnvTypeScript procutil.EnvVar = "MEMCOMPILE_TYPESCRIPT"

// LookupTypeScript finds typescript.js: first through EnvTypeScript, then in
// node_modules/typescript of each given directory, the working directory and
// their ancestors, then in the NODE_PATH entries.
func LookupTypeScript(dirs ...string) (string, error) {
	if path, ok := procutil.LookupFileEnv(EnvTypeScript); ok {
		return path, nil
	}

	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
			if path := filepath.Join(d, "node_modules", "typescript", "lib", "typescript.js"); isFile(path) {
				return path, nil
			}
			if filepath.Dir(d) == d {
				break
			}
		}
	}

	if nodePath, ok := procutil.LookupEnv("NODE_PATH"); ok {
		for _, dir := range filepath.SplitList(nodePath) {
			if path := filepath.Join(dir, "typescript", "lib", "typescript.js"); isFile(path) {
				return path, nil
			}
		}
	}

	return "", status.Errorf(codes.FailedPrecondition,
		"typescript.js not found: install the typescript package or set %s", EnvTypeScript)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// compilerOptionsJSON spells options the way tsconfig.json does, which is
// what the TypeScript option parser accepts. target and module are turned
// into their names.
func compilerOptionsJSON(options tsc.CompilerOptions) (map[string]any, error) {
	raw := make(map[string]any, len(options))
	for k, v := range options {
		if v != nil {
			raw[k] = v
		}
	}
	if _, ok := raw[tsc.OptionTarget]; ok {
		target, err := options.Target()
		if err != nil {
			return nil, err
		}
		raw[tsc.OptionTarget] = strings.ToLower(target.String())
	}
	if _, ok := raw[tsc.OptionModule]; ok {
		module, err := options.Module()
		if err != nil {
			return nil, err
		}
		raw[tsc.OptionModule] = module.String()
	}
	return raw, nil
}
