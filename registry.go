package styles

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Group organises fields (and nested groups) under a tab or section. Groups do
// not influence CSS output beyond registration order.
type Group struct {
	ID    string
	Label string

	children []groupNode
}

type groupNode struct {
	field *registeredField
	group *Group
}

type registeredField struct {
	def  FieldDefinition
	path []string
	seq  int
}

// RegistryOption configures a Registry at construction.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	name   string
	strict bool
	logger *zap.Logger
}

// WithRegistryName labels the registry, usually with the widget type it
// describes. The name participates in Version.
func WithRegistryName(name string) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.name = strings.TrimSpace(name)
	}
}

// WithStrictPlaceholders turns unknown template tokens into SchemaErrors at
// registration instead of warning and leaving them literal.
func WithStrictPlaceholders() RegistryOption {
	return func(cfg *registryConfig) {
		cfg.strict = true
	}
}

// WithRegistryLogger sets the logger used for registration warnings.
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.logger = logger
	}
}

// Registry owns the field schema of one widget type. It is safe for concurrent
// reads; registration is expected to happen once, before Seal.
type Registry struct {
	mu      sync.RWMutex
	cfg     registryConfig
	log     *zap.Logger
	root    *Group
	fields  map[string]*registeredField
	seq     int
	sealed  bool
	flat    *FlatIndex
	version string
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		cfg:    cfg,
		log:    log.Named("registry"),
		root:   &Group{},
		fields: map[string]*registeredField{},
	}
}

// Name returns the registry name configured via WithRegistryName.
func (r *Registry) Name() string {
	return r.cfg.name
}

// Strict reports whether unknown placeholders are schema errors.
func (r *Registry) Strict() bool {
	return r.cfg.strict
}

// RegisterGroup declares (or relabels) the group at parent+id.
func (r *Registry) RegisterGroup(parent []string, id, label string) error {
	if strings.TrimSpace(id) == "" {
		return schemaError("", parent, fmt.Errorf("group id must be provided"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return schemaError("", parent, ErrRegistrySealed)
	}
	group, err := r.ensurePath(append(append([]string(nil), parent...), id))
	if err != nil {
		return err
	}
	if label != "" {
		group.Label = label
	}
	return nil
}

// RegisterField inserts def at the group path. Missing groups along the path
// are created on the fly.
func (r *Registry) RegisterField(path []string, def FieldDefinition) error {
	def = def.clone()
	def.ID = strings.TrimSpace(def.ID)
	if def.ID == "" {
		return schemaError("", path, ErrFieldIDRequired)
	}
	if !def.Type.Valid() {
		return schemaError(def.ID, path, fmt.Errorf("%w: %q", ErrUnknownFieldType, def.Type))
	}
	for i := range def.Selectors {
		def.Selectors[i].Selector = normalizePlaceholders(def.Selectors[i].Selector)
		def.Selectors[i].Property = normalizePlaceholders(def.Selectors[i].Property)
	}
	if err := r.checkPlaceholders(def, path); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return schemaError(def.ID, path, ErrRegistrySealed)
	}
	if existing, ok := r.fields[def.ID]; ok {
		return schemaError(def.ID, path, fmt.Errorf("%w: already registered at %q", ErrDuplicateFieldID, strings.Join(existing.path, ".")))
	}
	group, err := r.ensurePath(path)
	if err != nil {
		return err
	}
	if group.child(def.ID) != nil {
		return schemaError(def.ID, path, fmt.Errorf("field %q collides with a group id", def.ID))
	}
	r.seq++
	entry := &registeredField{def: def, path: append([]string(nil), path...), seq: r.seq}
	group.children = append(group.children, groupNode{field: entry})
	r.fields[def.ID] = entry
	r.flat = nil
	r.version = ""
	return nil
}

// MustRegisterField is RegisterField for static schema declarations; it
// panics on error.
func (r *Registry) MustRegisterField(path []string, def FieldDefinition) {
	if err := r.RegisterField(path, def); err != nil {
		panic(err)
	}
}

// Seal freezes the registry. Subsequent registrations fail with
// ErrRegistrySealed.
func (r *Registry) Seal() *Registry {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
	return r
}

// Len returns the number of registered fields.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fields)
}

// GroupLabel returns the label of the group at path, or "" when absent.
func (r *Registry) GroupLabel(path []string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group := r.root
	for _, segment := range path {
		group = group.child(segment)
		if group == nil {
			return ""
		}
	}
	return group.Label
}

// Flat returns the id -> FieldDefinition index in registration order. The
// result is shared and must be treated as read-only.
func (r *Registry) Flat() *FlatIndex {
	r.mu.RLock()
	if r.flat != nil {
		flat := r.flat
		r.mu.RUnlock()
		return flat
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.flat == nil {
		r.flat = r.buildFlat()
	}
	return r.flat
}

// Version returns a deterministic fingerprint of the registered schema.
func (r *Registry) Version() string {
	flat := r.Flat()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.version != "" {
		return r.version
	}
	digest := xxhash.New()
	_, _ = digest.WriteString(r.cfg.name)
	_, _ = digest.WriteString("\x00")
	for _, id := range flat.ids {
		entry := flat.entries[id]
		payload, err := json.Marshal(struct {
			Path []string        `json:"path"`
			Def  FieldDefinition `json:"def"`
		}{entry.path, entry.def})
		if err != nil {
			payload = []byte(fmt.Sprintf("%#v", entry.def))
		}
		_, _ = digest.Write(payload)
	}
	r.version = strconv.FormatUint(digest.Sum64(), 16)
	return r.version
}

func (r *Registry) buildFlat() *FlatIndex {
	collected := make([]*registeredField, 0, len(r.fields))
	var walk func(g *Group)
	walk = func(g *Group) {
		for _, child := range g.children {
			if child.field != nil {
				collected = append(collected, child.field)
				continue
			}
			walk(child.group)
		}
	}
	walk(r.root)
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].seq < collected[j].seq
	})

	index := &FlatIndex{
		ids:     make([]string, 0, len(collected)),
		entries: make(map[string]flatEntry, len(collected)),
	}
	for _, field := range collected {
		index.ids = append(index.ids, field.def.ID)
		index.entries[field.def.ID] = flatEntry{def: field.def, path: field.path}
	}
	return index
}

func (r *Registry) ensurePath(path []string) (*Group, error) {
	group := r.root
	for i, segment := range path {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, schemaError("", path, fmt.Errorf("empty group segment at position %d", i))
		}
		if group.hasField(segment) {
			return nil, schemaError(segment, path, fmt.Errorf("group %q collides with a field id", segment))
		}
		next := group.child(segment)
		if next == nil {
			next = &Group{ID: segment}
			group.children = append(group.children, groupNode{group: next})
		}
		group = next
	}
	return group, nil
}

func (r *Registry) checkPlaceholders(def FieldDefinition, path []string) error {
	for _, rule := range def.Selectors {
		unknown := append(unknownPlaceholders(rule.Selector), unknownPlaceholders(rule.Property)...)
		if len(unknown) == 0 {
			continue
		}
		if r.cfg.strict {
			return schemaError(def.ID, path, fmt.Errorf("%w: %s", ErrUnknownPlaceholder, strings.Join(unknown, ", ")))
		}
		r.log.Warn("Unknown placeholder left literal",
			zap.String("field", def.ID),
			zap.Strings("tokens", unknown),
			zap.String("selector", rule.Selector))
	}
	return nil
}

func (g *Group) hasField(id string) bool {
	for _, node := range g.children {
		if node.field != nil && node.field.def.ID == id {
			return true
		}
	}
	return false
}

func (g *Group) child(id string) *Group {
	for _, node := range g.children {
		if node.group != nil && node.group.ID == id {
			return node.group
		}
	}
	return nil
}

// FlatIndex is the flattened, registration-ordered view of a registry.
type FlatIndex struct {
	ids     []string
	entries map[string]flatEntry
}

type flatEntry struct {
	def  FieldDefinition
	path []string
}

// IDs returns field ids in registration order.
func (f *FlatIndex) IDs() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.ids...)
}

// Len returns the number of fields.
func (f *FlatIndex) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ids)
}

// Get returns the definition registered under id.
func (f *FlatIndex) Get(id string) (FieldDefinition, bool) {
	if f == nil {
		return FieldDefinition{}, false
	}
	entry, ok := f.entries[id]
	if !ok {
		return FieldDefinition{}, false
	}
	return entry.def.clone(), true
}

// Path returns the group path the field was registered under.
func (f *FlatIndex) Path(id string) []string {
	if f == nil {
		return nil
	}
	entry, ok := f.entries[id]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.path...)
}

// SettingsPath returns the full settings path of a field (group path + id).
func (f *FlatIndex) SettingsPath(id string) []string {
	if f == nil {
		return nil
	}
	entry, ok := f.entries[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entry.path)+1)
	out = append(out, entry.path...)
	return append(out, id)
}

// Fields returns copies of every definition in registration order.
func (f *FlatIndex) Fields() []FieldDefinition {
	if f == nil {
		return nil
	}
	out := make([]FieldDefinition, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, f.entries[id].def.clone())
	}
	return out
}

func (f *FlatIndex) entry(id string) flatEntry {
	return f.entries[id]
}
