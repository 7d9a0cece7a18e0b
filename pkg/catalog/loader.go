package catalog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"ai-shopchat-be/internal/entity"
	"ai-shopchat-be/pkg/vectorindex"
)

// LoadProducts reads the catalog file: a JSON array of products whose array
// position is the product id. The returned slice is treated as read-only for
// the process lifetime.
func LoadProducts(path string) ([]entity.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var products []entity.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	// Position is authoritative, whatever the file says.
	for i := range products {
		products[i].Id = i
	}
	return products, nil
}

// LoadFlatIndex reads a pre-built flat index file into memory. Format:
// little-endian uint32 dim, uint32 count, then count*dim float32 values in
// row order (row position = product id).
func LoadFlatIndex(path string) (*vectorindex.FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	defer f.Close()

	var header struct {
		Dim   uint32
		Count uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read index header %s: %w", path, err)
	}
	if header.Dim == 0 {
		return nil, fmt.Errorf("index %s: zero dimension", path)
	}

	idx := vectorindex.NewFlatIndex(int(header.Dim))
	raw := make([]uint32, header.Dim)
	for i := uint32(0); i < header.Count; i++ {
		if err := binary.Read(f, binary.LittleEndian, raw); err != nil {
			return nil, fmt.Errorf("read index row %d of %s: %w", i, path, err)
		}
		vec := make([]float32, header.Dim)
		for j, bits := range raw {
			vec[j] = math.Float32frombits(bits)
		}
		if err := idx.Add(vec); err != nil {
			return nil, err
		}
	}
	return idx, nil
}
