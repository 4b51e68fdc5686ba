package scry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
)

// AttributeRecord accumulates what has been observed for one attribute of
// one tracked class. The observation count is diagnostic only; it never
// affects the descriptor's shape.
type AttributeRecord struct {
	Descriptor   *Descriptor
	Observations int
}

// SnapshotRecord is one row of a serialized tracking session.
type SnapshotRecord struct {
	Class        string
	Attribute    string
	Descriptor   *Descriptor
	Observations int
}

// Tracker is a type-generalization session: it registers a set of tracked
// classes (Go struct types standing in for the dynamic classes under
// analysis), accepts observations of live objects, and accumulates one
// structural descriptor per (class, attribute) pair.
//
// Sessions are independent of each other and carry no global state. A
// session is not safe for concurrent mutation; callers serialize Observe
// and ObserveAll against one Tracker.
type Tracker struct {
	classes     map[reflect.Type]string
	records     map[string]map[string]*AttributeRecord
	maxElements int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxElements caps how many elements of each container are inspected
// when classifying a value. Zero (the default) inspects every element.
func WithMaxElements(n int) TrackerOption {
	return func(t *Tracker) {
		t.maxElements = n
	}
}

// NewTracker creates an empty tracking session.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		classes: make(map[reflect.Type]string),
		records: make(map[string]map[string]*AttributeRecord),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track registers the dynamic types of the given samples as tracked
// classes. Samples may be struct values or pointers to structs; anything
// else is ignored. A class is named after its unqualified type name, with
// the package-qualified name used when two registered types collide.
func (t *Tracker) Track(samples ...any) {
	for _, s := range samples {
		rt := reflect.TypeOf(s)
		for rt != nil && rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		if rt == nil || rt.Kind() != reflect.Struct {
			continue
		}
		if _, ok := t.classes[rt]; ok {
			continue
		}
		name := rt.Name()
		if name == "" || t.nameTaken(name) {
			name = rt.String()
		}
		t.classes[rt] = name
	}
}

func (t *Tracker) nameTaken(name string) bool {
	for _, n := range t.classes {
		if n == name {
			return true
		}
	}
	return false
}

// TrackedClasses returns the registered class names, sorted.
func (t *Tracker) TrackedClasses() []string {
	out := make([]string, 0, len(t.classes))
	for _, n := range t.classes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Observe records the attribute values of a single object. Objects whose
// class is not tracked are ignored. Only exported fields are readable
// through reflection and therefore observed.
func (t *Tracker) Observe(obj any) {
	v := reflect.ValueOf(obj)
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return
	}
	class, ok := t.classes[v.Type()]
	if !ok {
		return
	}
	t.observeFields(class, v)
}

// ObserveAttribute records a single (object, attribute, value) observation.
// The value's runtime type is classified and merged into the accumulated
// descriptor for (class-of-obj, name). Untracked objects are ignored.
func (t *Tracker) ObserveAttribute(obj any, name string, value any) {
	rt := reflect.TypeOf(obj)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return
	}
	class, ok := t.trackedName(rt)
	if !ok {
		return
	}
	t.observeField(class, name, reflect.ValueOf(value))
}

// ObserveAll walks every object reachable from the given roots and observes
// each one whose class is tracked. The walk descends through pointers,
// interfaces, containers, and untracked structs to find tracked objects.
//
// An object-identity visited set scoped to this call guards against cycles:
// a previously visited object is still merged as a reference wherever it
// appears as an attribute value, but its own attributes are not re-walked.
// Two ObserveAll passes compose: the accumulated descriptors do not depend
// on the order or grouping of calls.
func (t *Tracker) ObserveAll(roots ...any) {
	type identity struct {
		ptr uintptr
		typ reflect.Type
		len int // distinguishes slices over a shared backing array
	}
	visited := make(map[identity]bool)

	var queue []reflect.Value
	for _, r := range roots {
		queue = append(queue, reflect.ValueOf(r))
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		for v.IsValid() && v.Kind() == reflect.Interface {
			v = v.Elem()
		}
		if !v.IsValid() {
			continue
		}

		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice:
			if v.IsNil() {
				continue
			}
			id := identity{ptr: v.Pointer(), typ: v.Type()}
			if v.Kind() == reflect.Slice {
				id.len = v.Len()
			}
			if visited[id] {
				continue
			}
			visited[id] = true
		}

		switch v.Kind() {
		case reflect.Pointer:
			queue = append(queue, v.Elem())

		case reflect.Struct:
			if class, ok := t.classes[v.Type()]; ok {
				t.observeFields(class, v)
			}
			for i := 0; i < v.NumField(); i++ {
				if v.Type().Field(i).IsExported() {
					queue = append(queue, v.Field(i))
				}
			}

		case reflect.Slice, reflect.Array:
			for i := 0; i < v.Len(); i++ {
				queue = append(queue, v.Index(i))
			}

		case reflect.Map:
			for it := v.MapRange(); it.Next(); {
				queue = append(queue, it.Key(), it.Value())
			}
		}
	}
}

func (t *Tracker) observeFields(class string, v reflect.Value) {
	rt := v.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		t.observeField(class, f.Name, v.Field(i))
	}
}

func (t *Tracker) observeField(class, attr string, v reflect.Value) {
	attrs := t.records[class]
	if attrs == nil {
		attrs = make(map[string]*AttributeRecord)
		t.records[class] = attrs
	}
	rec := attrs[attr]
	if rec == nil {
		rec = &AttributeRecord{Descriptor: Unknown()}
		attrs[attr] = rec
	}
	rec.Descriptor = Merge(rec.Descriptor, t.classify(v))
	rec.Observations++
}

// Record returns the accumulated record for (class, attribute), or nil.
func (t *Tracker) Record(class, attribute string) *AttributeRecord {
	return t.records[class][attribute]
}

// Snapshot serializes the session as rows sorted by (class, attribute).
// Because Merge is associative and commutative, snapshots from independent
// sessions can be imported into a fresh Tracker in any order and always
// yield the same result.
func (t *Tracker) Snapshot() []SnapshotRecord {
	var out []SnapshotRecord
	for class, attrs := range t.records {
		for attr, rec := range attrs {
			out = append(out, SnapshotRecord{
				Class:        class,
				Attribute:    attr,
				Descriptor:   rec.Descriptor,
				Observations: rec.Observations,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Attribute < out[j].Attribute
	})
	return out
}

// ImportSnapshot merges previously serialized rows into the session.
func (t *Tracker) ImportSnapshot(rows []SnapshotRecord) {
	for _, row := range rows {
		attrs := t.records[row.Class]
		if attrs == nil {
			attrs = make(map[string]*AttributeRecord)
			t.records[row.Class] = attrs
		}
		rec := attrs[row.Attribute]
		if rec == nil {
			rec = &AttributeRecord{Descriptor: Unknown()}
			attrs[row.Attribute] = rec
		}
		rec.Descriptor = Merge(rec.Descriptor, row.Descriptor)
		rec.Observations += row.Observations
	}
}

// Write serializes the accumulated report: class names sorted at
// indentation level 0, attributes sorted beneath them as "name : type"
// lines with the names column-aligned per class. Attributes that were never
// observed have no record and are omitted.
func (t *Tracker) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	classes := make([]string, 0, len(t.records))
	for class := range t.records {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	for _, class := range classes {
		fmt.Fprintf(bw, "%s\n", class)

		attrs := make([]string, 0, len(t.records[class]))
		width := 0
		for attr, rec := range t.records[class] {
			if rec.Descriptor.Kind == KindUnknown {
				continue
			}
			attrs = append(attrs, attr)
			if len(attr) > width {
				width = len(attr)
			}
		}
		sort.Strings(attrs)
		for _, attr := range attrs {
			fmt.Fprintf(bw, "    %-*s : %s\n", width, attr, t.records[class][attr].Descriptor)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("tracker: write report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path, creating or truncating the file.
// The destination is closed on every exit path; on failure partial output
// may remain, and the session still holds the full report for a retry.
func (t *Tracker) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tracker: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("tracker: close %s: %w", path, cerr)
		}
	}()
	return t.Write(f)
}
