package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/roach88/xmsync/internal/mirror"
	"github.com/roach88/xmsync/internal/value"
)

//go:embed schema.cue
var schemaCUE string

// Load reads configuration from a file or a directory of CUE files and
// applies environment overrides. Relative input paths resolve against the
// configured baseDir, or the config location when none is set.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error accessing config: %v", err)}
	}

	var cfg *Config
	dir := path
	if info.IsDir() {
		cfg, err = loadDir(path)
	} else {
		dir = filepath.Dir(path)
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading config file: %v", err)}
		}
		cfg, err = Parse(path, data)
	}
	if err != nil {
		return nil, err
	}

	cfg.Path = path
	applyEnvOverrides(cfg)
	switch {
	case cfg.BaseDir == "":
		cfg.BaseDir = dir
	case !filepath.IsAbs(cfg.BaseDir):
		cfg.BaseDir = filepath.Join(dir, cfg.BaseDir)
	}
	return cfg, nil
}

// Parse builds a Config from raw file content. The format is chosen by the
// extension of name: .cue, .json, .yaml or .yml. No environment overrides
// are applied.
func Parse(name string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	var v cue.Value
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cue", ".json":
		// JSON is valid CUE.
		v = ctx.CompileBytes(data, cue.Filename(name))
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
		}
		if raw == nil {
			raw = map[string]any{}
		}
		v = ctx.Encode(raw)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported config format %q (want .cue, .json, .yaml)", filepath.Ext(name))}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeLoadFailed)
	}

	return build(ctx, v, value.ConfigHash(data))
}

// loadDir loads every CUE file in dir as one package, the way a split
// configuration (groups.cue, people.cue, ...) is usually kept.
func loadDir(dir string) (*Config, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	var content []byte
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", f, err)}
		}
		content = append(content, data...)
	}

	return build(ctx, v, value.ConfigHash(content))
}

// FindCUEFiles returns the .cue files directly inside dir, sorted by name.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// build unifies v with the schema and decodes the result.
func build(ctx *cue.Context, v cue.Value, hash string) (*Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	cfg, err := decode(unified)
	if err != nil {
		return nil, err
	}
	cfg.Hash = hash
	return cfg, nil
}

// applyEnvOverrides applies XMSYNC_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("XMSYNC_MIRROR_TAG"); v != "" {
		cfg.MirrorTag = v
	}
	if v := os.Getenv("XMSYNC_BASE_DIR"); v != "" {
		cfg.BaseDir = v
	}
	if v := os.Getenv("XMSYNC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("XMSYNC_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// MirrorTagOrDefault returns the process-wide tag, falling back to the
// built-in default.
func (c *Config) MirrorTagOrDefault() string {
	if c.MirrorTag != "" {
		return c.MirrorTag
	}
	return mirror.DefaultTag
}
