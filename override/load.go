package override

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

const (
	MethodFile      = "method.txt"
	ConstructorFile = "constructor.txt"
	TablesFile      = "overrides.toml"
)

//go:embed resources/*
var resources embed.FS

// Default returns the registry built from the embedded resources.
func Default() (*Registry, error) {
	sub, err := fs.Sub(resources, "resources")
	if err != nil {
		return nil, errors.Wrap(err, "opening embedded overrides")
	}
	return LoadFS(sub, nil)
}

// Load builds a registry from the embedded defaults with every resource file
// present in dir replacing its default counterpart. An empty dir yields the
// defaults.
func Load(dir string) (*Registry, error) {
	sub, err := fs.Sub(resources, "resources")
	if err != nil {
		return nil, errors.Wrap(err, "opening embedded overrides")
	}
	if dir == "" {
		return LoadFS(sub, nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "reading overrides directory %s", dir),
			"set overrides.dir to a directory containing method.txt, constructor.txt or overrides.toml")
	}
	if !info.IsDir() {
		return nil, errors.Newf("overrides path %s is not a directory", dir)
	}
	return LoadFS(sub, os.DirFS(dir))
}

// LoadFS reads the three resource files from base, preferring the copy in
// user when it exists there.
func LoadFS(base, user fs.FS) (*Registry, error) {
	open := func(name string) ([]byte, error) {
		if user != nil {
			data, err := fs.ReadFile(user, name)
			if err == nil {
				log.Info("using override file", "file", filepath.ToSlash(name))
				return data, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrapf(err, "reading %s", name)
			}
		}
		data, err := fs.ReadFile(base, name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return data, errors.Wrapf(err, "reading %s", name)
	}

	var tables Tables
	data, err := open(TablesFile)
	if err != nil {
		return nil, err
	}
	if err := DecodeTables(bytes.NewReader(data), &tables); err != nil {
		return nil, err
	}

	data, err = open(MethodFile)
	if err != nil {
		return nil, err
	}
	methods, err := ParseMethodTable(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if tables.Methods == nil {
		tables.Methods = methods
	} else {
		for name, clause := range methods {
			tables.Methods[name] = clause
		}
	}

	data, err = open(ConstructorFile)
	if err != nil {
		return nil, err
	}
	ctors, err := ParseConstructorTable(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if tables.Constructors == nil {
		tables.Constructors = ctors
	} else {
		for class, lines := range ctors {
			tables.Constructors[class] = lines
		}
	}

	return New(tables), nil
}

// DecodeTables parses overrides.toml content into t.
func DecodeTables(r io.Reader, t *Tables) error {
	meta, err := toml.NewDecoder(r).Decode(t)
	if err != nil {
		return errors.Wrap(err, "decoding override tables")
	}
	for _, key := range meta.Undecoded() {
		log.Warning("unknown override table key", "key", key.String())
	}
	return nil
}

// EncodeTables writes t in overrides.toml form.
func EncodeTables(w io.Writer, t Tables) error {
	return errors.Wrap(toml.NewEncoder(w).Encode(t), "encoding override tables")
}
