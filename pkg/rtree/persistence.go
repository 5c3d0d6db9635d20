package rtree

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/kass/go-geo-bearing/pkg/models"
)

// IndexData represents the serializable form of the gazetteer
type IndexData struct {
	Places []*models.Place `json:"places"`
	Count  int64           `json:"count"`
}

// SaveToFile saves the gazetteer to a binary file
func (g *PlaceIndex) SaveToFile(filename string) error {
	data := IndexData{
		Places: g.Places(),
		Count:  g.Count(),
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	return nil
}

// LoadFromFile replaces the gazetteer contents with a saved file
func (g *PlaceIndex) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data IndexData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}

	g.Clear()
	if err := g.IndexPlaces(data.Places); err != nil {
		return fmt.Errorf("failed to index places: %w", err)
	}

	return nil
}
