package deobfuscate

import (
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/deepnoodle-ai/untangle/errz"
)

// Decoder is a string decoding function found in obfuscated source. Source
// must define a global function called Name, along with anything it needs
// such as the string array it indexes.
type Decoder struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

// Catalog is a read-only set of decoders keyed by name. A Catalog may be
// shared by concurrent runs once built.
type Catalog struct {
	decoders []Decoder
	byName   map[string]Decoder
}

// NewCatalog builds a catalog from the given decoders. Names must be unique
// and non-empty, and every decoder needs source.
func NewCatalog(decoders ...Decoder) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Decoder, len(decoders))}
	var errs *multierror.Error
	for i, d := range decoders {
		switch {
		case d.Name == "":
			errs = multierror.Append(errs, errz.Newf(errz.ErrConfig, "decoder %d has no name", i))
		case d.Source == "":
			errs = multierror.Append(errs, errz.Newf(errz.ErrConfig, "decoder %q has no source", d.Name))
		default:
			if _, dup := c.byName[d.Name]; dup {
				errs = multierror.Append(errs, errz.Newf(errz.ErrConfig, "duplicate decoder %q", d.Name))
				continue
			}
			c.byName[d.Name] = d
			c.decoders = append(c.decoders, d)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

type catalogFile struct {
	Decoders []Decoder `yaml:"decoders"`
}

// LoadCatalog reads a catalog from YAML of the form:
//
//	decoders:
//	  - name: decode
//	    source: |
//	      function decode(n) { return String(n * 2); }
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errz.New(errz.ErrConfig, "invalid decoder catalog").WithCause(err)
	}
	return NewCatalog(file.Decoders...)
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errz.New(errz.ErrConfig, "opening decoder catalog").WithCause(err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Lookup returns the decoder called name.
func (c *Catalog) Lookup(name string) (Decoder, bool) {
	if c == nil {
		return Decoder{}, false
	}
	d, ok := c.byName[name]
	return d, ok
}

// Has reports whether the catalog holds a decoder called name.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Decoders returns the decoders in catalog order.
func (c *Catalog) Decoders() []Decoder {
	if c == nil {
		return nil
	}
	return append([]Decoder(nil), c.decoders...)
}

// Len returns the number of decoders.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.decoders)
}
