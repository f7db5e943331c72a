//go:build hdf5

package arraystore

import (
	"fmt"
	"strings"

	"github.com/Noofbiz/openego/ndarray"
	"github.com/Noofbiz/openego/schema"
	"gonum.org/v1/hdf5"
)

func init() {
	Register(HDF5{})
}

// HDF5 reads .hdf5 stores through the HDF5 C library. Only built with the
// hdf5 tag since it needs cgo and libhdf5.
type HDF5 struct{}

// Ext implements Reader.
func (HDF5) Ext() string { return ".hdf5" }

// container is the part of the HDF5 API shared by files and groups.
type container interface {
	NumObjects() (uint, error)
	ObjectNameByIndex(idx uint) (string, error)
	ObjectTypeByIndex(idx uint) (hdf5.GType, error)
	OpenGroup(name string) (*hdf5.Group, error)
	OpenDataset(name string) (*hdf5.Dataset, error)
}

// Read implements Reader.
func (HDF5) Read(path, key string) (Value, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return Value{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parts := strings.Split(key, "/")
	var cur container = f
	for _, p := range parts[:len(parts)-1] {
		g, err := cur.OpenGroup(p)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q in %s", schema.ErrMissingKey, key, path)
		}
		defer g.Close()
		cur = g
	}
	ds, err := cur.OpenDataset(parts[len(parts)-1])
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q in %s", schema.ErrMissingKey, key, path)
	}
	defer ds.Close()

	v, ok, err := readDataset(ds)
	if err != nil {
		return Value{}, fmt.Errorf("read %q from %s: %w", key, path, err)
	}
	if !ok {
		return Value{}, fmt.Errorf("read %q from %s: unsupported dataset type", key, path)
	}
	return v, nil
}

// ReadAll implements Reader. Compound and other non-array datasets are
// skipped.
func (HDF5) ReadAll(path string) (*Group, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	root := NewGroup()
	if err := walk(f, root); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return root, nil
}

func walk(c container, into *Group) error {
	n, err := c.NumObjects()
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		name, err := c.ObjectNameByIndex(i)
		if err != nil {
			return err
		}
		typ, err := c.ObjectTypeByIndex(i)
		if err != nil {
			return err
		}
		switch typ {
		case hdf5.H5G_GROUP:
			g, err := c.OpenGroup(name)
			if err != nil {
				return err
			}
			sub := NewGroup()
			err = walk(g, sub)
			g.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			into.Groups[name] = sub
		case hdf5.H5G_DATASET:
			ds, err := c.OpenDataset(name)
			if err != nil {
				return err
			}
			v, ok, err := readDataset(ds)
			ds.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if ok {
				into.Datasets[name] = v
			}
		}
	}
	return nil
}

// readDataset reads a numeric dataset as float64 and a string dataset into
// Value.Strings. ok is false for compound and other datasets.
func readDataset(ds *hdf5.Dataset) (Value, bool, error) {
	dt, err := ds.Datatype()
	if err != nil {
		return Value{}, false, err
	}
	defer dt.Close()
	class := dt.Class()
	if class != hdf5.T_FLOAT && class != hdf5.T_INTEGER && class != hdf5.T_STRING {
		return Value{}, false, nil
	}

	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return Value{}, false, err
	}
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}

	if class == hdf5.T_STRING {
		s := make([]string, space.SimpleExtentNPoints())
		if err := ds.Read(&s); err != nil {
			return Value{}, false, err
		}
		for i := range s {
			s[i] = strings.TrimRight(s[i], "\x00")
		}
		return Value{DType: "S", Strings: s}, true, nil
	}

	data := make([]float64, space.SimpleExtentNPoints())
	if err := ds.Read(&data); err != nil {
		return Value{}, false, err
	}
	arr, err := ndarray.New(data, shape...)
	if err != nil {
		return Value{}, false, err
	}
	dtype := "f8"
	if class == hdf5.T_INTEGER {
		dtype = "i8"
	}
	return Value{DType: dtype, Array: arr}, true, nil
}
