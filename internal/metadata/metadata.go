// Package metadata parses the OData CSDL document published at $metadata and
// answers the lookups needed for entity and property validation.
package metadata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fivetwenty-io/dataverse/pkg/dataverse"
)

type edmx struct {
	DataServices dataServices `xml:"DataServices"`
}

type dataServices struct {
	Schema []schema `xml:"Schema"`
}

type schema struct {
	Namespace       string            `xml:"Namespace,attr"`
	Alias           string            `xml:"Alias,attr"`
	EntityType      []EntityType      `xml:"EntityType"`
	EntityContainer []entityContainer `xml:"EntityContainer"`
}

type entityContainer struct {
	Name      string      `xml:"Name,attr"`
	EntitySet []EntitySet `xml:"EntitySet"`
}

// EntitySet is a named collection of records of one entity type.
type EntitySet struct {
	Name       string `xml:"Name,attr"`
	EntityType string `xml:"EntityType,attr"`
}

// TypeName returns the local entity type name, the part of the qualified
// EntityType attribute after the last period.
func (s EntitySet) TypeName() string {
	idx := strings.LastIndex(s.EntityType, ".")

	return s.EntityType[idx+1:]
}

// EntityType is the schema of an entity set.
type EntityType struct {
	Name       string     `xml:"Name,attr"`
	BaseType   string     `xml:"BaseType,attr"`
	Key        key        `xml:"Key"`
	Properties []Property `xml:"Property"`
}

type key struct {
	PropertyRef []struct {
		Name string `xml:"Name,attr"`
	} `xml:"PropertyRef"`
}

// Property is a declared structural property.
type Property struct {
	Name     string `xml:"Name,attr"`
	Type     string `xml:"Type,attr"`
	Nullable *bool  `xml:"Nullable,attr"`
}

// HasProperty reports whether name is declared on the type.
func (t *EntityType) HasProperty(name string) bool {
	for _, p := range t.Properties {
		if p.Name == name {
			return true
		}
	}

	return false
}

// PropertyNames returns the declared property names in document order.
func (t *EntityType) PropertyNames() []string {
	names := make([]string, 0, len(t.Properties))
	for _, p := range t.Properties {
		names = append(names, p.Name)
	}

	return names
}

// KeyNames returns the names of the key properties.
func (t *EntityType) KeyNames() []string {
	names := make([]string, 0, len(t.Key.PropertyRef))
	for _, ref := range t.Key.PropertyRef {
		names = append(names, ref.Name)
	}

	return names
}

// Document is an immutable, parsed $metadata document.
type Document struct {
	entitySets  map[string]EntitySet
	entityTypes map[string]*EntityType
}

// Parse reads a CSDL document.
func Parse(r io.Reader) (*Document, error) {
	var doc edmx

	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata document: %w", err)
	}

	d := &Document{
		entitySets:  make(map[string]EntitySet),
		entityTypes: make(map[string]*EntityType),
	}

	for _, s := range doc.DataServices.Schema {
		for i := range s.EntityType {
			et := s.EntityType[i]
			// first declaration wins, matching a document-order search
			if _, exists := d.entityTypes[et.Name]; !exists {
				d.entityTypes[et.Name] = &et
			}
		}

		for _, c := range s.EntityContainer {
			for _, set := range c.EntitySet {
				if _, exists := d.entitySets[set.Name]; !exists {
					d.entitySets[set.Name] = set
				}
			}
		}
	}

	return d, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// FindEntitySet looks up an entity set by name.
func (d *Document) FindEntitySet(name string) (EntitySet, bool) {
	set, ok := d.entitySets[name]

	return set, ok
}

// FindEntityType looks up an entity type by its local name.
func (d *Document) FindEntityType(name string) (*EntityType, bool) {
	et, ok := d.entityTypes[name]

	return et, ok
}

// ResolveEntity maps an entity set name to its set and entity type.
func (d *Document) ResolveEntity(entitySet string) (EntitySet, *EntityType, error) {
	set, ok := d.FindEntitySet(entitySet)
	if !ok {
		return EntitySet{}, nil, dataverse.NewValidationError(dataverse.ErrEntityNotFound,
			"Entity '%s' not found in the metadata", entitySet)
	}

	et, ok := d.FindEntityType(set.TypeName())
	if !ok {
		return EntitySet{}, nil, dataverse.NewValidationError(dataverse.ErrEntityTypeNotFound,
			"Entity type '%s' of entity '%s' not found in the metadata", set.TypeName(), entitySet)
	}

	return set, et, nil
}

// ValidateProperties checks that every key of data is declared on et.
// Keys are checked in sorted order so the reported property is stable.
func ValidateProperties(entitySet string, et *EntityType, data map[string]any) error {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if !et.HasProperty(name) {
			return dataverse.NewValidationError(dataverse.ErrPropertyNotFound,
				"Property '%s' not found in entity '%s' in the metadata", name, entitySet)
		}
	}

	return nil
}

// EntitySetNames implements dataverse.Metadata.
func (d *Document) EntitySetNames() []string {
	names := make([]string, 0, len(d.entitySets))
	for name := range d.entitySets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// EntityTypeName implements dataverse.Metadata.
func (d *Document) EntityTypeName(entitySet string) (string, error) {
	_, et, err := d.ResolveEntity(entitySet)
	if err != nil {
		return "", err
	}

	return et.Name, nil
}

// Properties implements dataverse.Metadata.
func (d *Document) Properties(entitySet string) ([]string, error) {
	_, et, err := d.ResolveEntity(entitySet)
	if err != nil {
		return nil, err
	}

	return et.PropertyNames(), nil
}
