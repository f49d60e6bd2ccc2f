package pipeline

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/layout"
)

// LoadOptionsFile reads options from a .toml, .yaml or .yml file. Fields
// the file leaves out keep their defaults, including individual layout
// parameters.
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, kerrors.Wrap(kerrors.ErrCodeNotFound, err, "read options")
	}
	return DecodeOptions(data, filepath.Ext(path))
}

// DecodeOptions decodes options in the format named by ext.
func DecodeOptions(data []byte, ext string) (Options, error) {
	opts := Options{Params: layout.DefaultParams()}
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		var md toml.MetaData
		md, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&opts)
		if err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Options{}, kerrors.New(kerrors.ErrCodeInvalidOptions, "unknown option %q", undecoded[0].String())
			}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&opts)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return Options{}, kerrors.New(kerrors.ErrCodeInvalidOptions, "unsupported options file type %q", ext)
	}
	if err != nil {
		return Options{}, kerrors.Wrap(kerrors.ErrCodeInvalidOptions, err, "decode options")
	}
	return opts, nil
}
