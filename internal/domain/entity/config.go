// Package entity defines the core domain entities for confnav.
// These entities model the Namespace → Group → DataId → entry hierarchy of a
// configuration store and are independent of any backend or UI framework.
package entity

import "strings"

// ConfigType identifies the format of a configuration entry's content.
type ConfigType string

// Supported content formats.
const (
	TypeText       ConfigType = "text"
	TypeJSON       ConfigType = "json"
	TypeXML        ConfigType = "xml"
	TypeYAML       ConfigType = "yaml"
	TypeHTML       ConfigType = "html"
	TypeProperties ConfigType = "properties"
)

// DefaultDraftType is the format preselected for new entries.
const DefaultDraftType = TypeYAML

// AllConfigTypes lists the known content formats in selector order.
var AllConfigTypes = []ConfigType{
	TypeYAML,
	TypeJSON,
	TypeProperties,
	TypeText,
	TypeXML,
	TypeHTML,
}

// Known reports whether t is one of the formats in AllConfigTypes.
func (t ConfigType) Known() bool {
	for _, k := range AllConfigTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Normalize returns t lowercased, or TypeText when t is empty.
// Unknown values are preserved.
func (t ConfigType) Normalize() ConfigType {
	n := ConfigType(strings.ToLower(strings.TrimSpace(string(t))))
	if n == "" {
		return TypeText
	}
	return n
}

// Next returns the format following t in AllConfigTypes, wrapping around.
// Unknown formats cycle back to the first entry.
func (t ConfigType) Next() ConfigType {
	for i, k := range AllConfigTypes {
		if k == t {
			return AllConfigTypes[(i+1)%len(AllConfigTypes)]
		}
	}
	return AllConfigTypes[0]
}

// TypeFromDataID guesses a format from a dataId's file extension.
func TypeFromDataID(dataID string) ConfigType {
	i := strings.LastIndexByte(dataID, '.')
	if i < 0 {
		return TypeText
	}
	switch strings.ToLower(dataID[i+1:]) {
	case "yaml", "yml":
		return TypeYAML
	case "json":
		return TypeJSON
	case "xml":
		return TypeXML
	case "html", "htm":
		return TypeHTML
	case "properties", "props":
		return TypeProperties
	default:
		return TypeText
	}
}

// Namespace is the top-level partition of the configuration store.
type Namespace struct {
	ID          string
	ShowName    string
	Description string
	ConfigCount int
}

// DisplayName returns the show name, falling back to the id.
func (n Namespace) DisplayName() string {
	if n.ShowName != "" {
		return n.ShowName
	}
	return n.ID
}

// ConfigKey uniquely identifies a configuration entry.
type ConfigKey struct {
	Namespace string
	Group     string
	DataID    string
}

// String renders the key as namespace/group/dataId.
func (k ConfigKey) String() string {
	return k.Namespace + "/" + k.Group + "/" + k.DataID
}

// ConfigEntry is a single configuration item and its metadata.
type ConfigEntry struct {
	Namespace   string
	Group       string
	DataID      string
	Content     string
	Description string
	Type        ConfigType
}

// Key returns the entry's identifying key.
func (e ConfigEntry) Key() ConfigKey {
	return ConfigKey{Namespace: e.Namespace, Group: e.Group, DataID: e.DataID}
}

// Clone returns an independent copy of the entry.
// ConfigEntry holds only value fields, so the copy never aliases the source;
// callers use Clone to make that intent explicit at ownership boundaries.
func (e ConfigEntry) Clone() ConfigEntry {
	return e
}

// CloneEntries copies a slice of entries so the result shares no backing
// array with src.
func CloneEntries(src []ConfigEntry) []ConfigEntry {
	if len(src) == 0 {
		return []ConfigEntry{}
	}
	out := make([]ConfigEntry, len(src))
	for i, e := range src {
		out[i] = e.Clone()
	}
	return out
}
