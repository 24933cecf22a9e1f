package backend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/store/keys"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the root configuration document under a context root.
	ConfigFileName = "gx.yml"
	// DatasourcesSection is the top level mapping holding datasources.
	DatasourcesSection = "datasources"

	lockRetryDelay = 50 * time.Millisecond
)

// Inline stores values as entries of one top level mapping of the root
// configuration document. Other sections of the document are left as they
// are. Writers on the same document are serialized with a file lock.
type Inline struct {
	path    string
	section string
	lock    *flock.Flock
}

var _ Backend = (*Inline)(nil)

// NewInline returns a backend over <contextRoot>/gx.yml storing entries under
// section. The directory is created if needed; the document is created on
// first write.
func NewInline(contextRoot, section string) (*Inline, apperrors.Error) {
	if section == "" {
		section = DatasourcesSection
	}
	if err := os.MkdirAll(contextRoot, 0o755); err != nil {
		return nil, ErrBackendFailure.Err(errors.Wrapf(err, "creating context root %s", contextRoot))
	}
	path := filepath.Join(contextRoot, ConfigFileName)
	return &Inline{
		path:    path,
		section: section,
		lock:    flock.New(path + ".lock"),
	}, nil
}

func (b *Inline) Kind() Kind { return KindInline }

// Path returns the location of the root configuration document.
func (b *Inline) Path() string { return b.path }

func (b *Inline) Get(ctx context.Context, key keys.Key) (map[string]any, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	unlock, err := b.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return b.get(key)
}

func (b *Inline) get(key keys.Key) (map[string]any, apperrors.Error) {
	doc, err := b.load()
	if err != nil {
		return nil, err
	}
	section := findValue(doc.Content[0], b.section)
	if section == nil || section.Kind != yaml.MappingNode {
		return nil, ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	entry := findValue(section, key.String())
	if entry == nil {
		return nil, ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	m := make(map[string]any)
	if entry.Kind == yaml.ScalarNode && entry.Tag == "!!null" {
		return m, nil
	}
	if err := entry.Decode(&m); err != nil {
		return nil, ErrInvalidValue.Err(errors.Wrapf(err, "decoding %s.%s", b.section, key.String()))
	}
	return copyValue(m)
}

func (b *Inline) Set(ctx context.Context, key keys.Key, value map[string]any) (map[string]any, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return nil, ErrInvalidValue.Err(err)
	}
	unlock, aerr := b.acquire(ctx, true)
	if aerr != nil {
		return nil, aerr
	}
	defer unlock()

	doc, aerr := b.load()
	if aerr != nil {
		return nil, aerr
	}
	section := ensureMapping(doc.Content[0], b.section)
	setValue(section, key.String(), &node)
	if aerr := b.write(doc); aerr != nil {
		return nil, aerr
	}
	log.Ctx(ctx).Debug().Str("backend", string(KindInline)).Str("key", key.String()).Str("path", b.path).Msg("stored entry")
	return b.get(key)
}

func (b *Inline) Delete(ctx context.Context, key keys.Key) apperrors.Error {
	if err := requireKey(key); err != nil {
		return err
	}
	unlock, err := b.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := b.load()
	if err != nil {
		return err
	}
	section := findValue(doc.Content[0], b.section)
	if section == nil || section.Kind != yaml.MappingNode || !removeKey(section, key.String()) {
		return ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	if err := b.write(doc); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().Str("backend", string(KindInline)).Str("key", key.String()).Msg("deleted entry")
	return nil
}

func (b *Inline) Has(ctx context.Context, key keys.Key) (bool, apperrors.Error) {
	_, err := b.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// ListKeys returns the entries of the section in document order.
func (b *Inline) ListKeys(ctx context.Context) ([]keys.Key, apperrors.Error) {
	unlock, err := b.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := b.load()
	if err != nil {
		return nil, err
	}
	ks := []keys.Key{}
	section := findValue(doc.Content[0], b.section)
	if section == nil || section.Kind != yaml.MappingNode {
		return ks, nil
	}
	for i := 0; i+1 < len(section.Content); i += 2 {
		ks = append(ks, keys.NewDataContextVariableKey(section.Content[i].Value))
	}
	return ks, nil
}

func (b *Inline) acquire(ctx context.Context, exclusive bool) (func(), apperrors.Error) {
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = b.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = b.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err == nil && !locked {
		err = ctx.Err()
	}
	if err != nil {
		return nil, ErrLockTimeout.Err(errors.Wrapf(err, "locking %s", b.lock.Path()))
	}
	if !locked {
		return nil, ErrLockTimeout.Msgf("unable to lock %s", b.lock.Path())
	}
	return func() {
		if err := b.lock.Unlock(); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("path", b.lock.Path()).Msg("unable to release config file lock")
		}
	}, nil
}

// load reads the document, or returns an empty one when the file does not
// exist yet. The returned document always has a mapping at its root.
func (b *Inline) load() (*yaml.Node, apperrors.Error) {
	data, err := os.ReadFile(b.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, ErrBackendFailure.Err(errors.Wrapf(err, "reading %s", b.path))
	}
	doc := &yaml.Node{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, ErrBackendFailure.Err(errors.Wrapf(err, "parsing %s", b.path))
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrBackendFailure.Msgf("%s: root of the document is not a mapping", b.path)
	}
	return doc, nil
}

// write replaces the document through a temporary file in the same
// directory.
func (b *Inline) write(doc *yaml.Node) apperrors.Error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return ErrBackendFailure.Err(errors.Wrap(err, "encoding document"))
	}
	if err := enc.Close(); err != nil {
		return ErrBackendFailure.Err(errors.Wrap(err, "encoding document"))
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+ConfigFileName+".*")
	if err != nil {
		return ErrBackendFailure.Err(errors.Wrapf(err, "writing %s", b.path))
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return ErrBackendFailure.Err(errors.Wrapf(err, "writing %s", b.path))
	}
	if err := tmp.Close(); err != nil {
		return ErrBackendFailure.Err(errors.Wrapf(err, "writing %s", b.path))
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return ErrBackendFailure.Err(errors.Wrapf(err, "replacing %s", b.path))
	}
	return nil
}

func findValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// ensureMapping returns the mapping stored under key, creating it or
// replacing an empty value.
func ensureMapping(mapping *yaml.Node, key string) *yaml.Node {
	v := findValue(mapping, key)
	if v != nil && v.Kind == yaml.MappingNode {
		return v
	}
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	setValue(mapping, key, m)
	return m
}

func setValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func removeKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content = append(mapping.Content[:i], mapping.Content[i+2:]...)
			return true
		}
	}
	return false
}
