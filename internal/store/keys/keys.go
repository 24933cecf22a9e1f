// Package keys defines the keys that address entries in a config store.
package keys

import (
	"strings"
)

// Key addresses a store entry.
type Key interface {
	ToTuple() []string
	String() string
}

// DataContextVariableKey names a resource held by a data context, such as a
// datasource. It is the only key the datasource store accepts.
type DataContextVariableKey struct {
	ResourceName string
}

func NewDataContextVariableKey(name string) DataContextVariableKey {
	return DataContextVariableKey{ResourceName: name}
}

func (k DataContextVariableKey) ToTuple() []string {
	return []string{k.ResourceName}
}

func (k DataContextVariableKey) String() string {
	return k.ResourceName
}

// CloudIdentifier addresses a resource of the cloud API. ID is empty until
// the resource has been created; ResourceName may be used to look it up.
type CloudIdentifier struct {
	ResourceType string
	ID           string
	ResourceName string
}

func (k CloudIdentifier) ToTuple() []string {
	return []string{k.ResourceType, k.ID, k.ResourceName}
}

func (k CloudIdentifier) String() string {
	return strings.Join(k.ToTuple(), "/")
}

// TupleKey is a generic key made of an ordered list of parts.
type TupleKey []string

func NewTupleKey(parts ...string) TupleKey {
	return TupleKey(parts)
}

func (k TupleKey) ToTuple() []string {
	return append([]string(nil), k...)
}

func (k TupleKey) String() string {
	return strings.Join(k, ".")
}
