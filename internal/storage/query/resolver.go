package query

import (
	"reflect"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// ValueAccessor is the member name single-value wrappers expose their
// primitive through. Paths may name it explicitly ("Email.Value") or leave it
// out ("Email"); both resolve to the same access.
const ValueAccessor = "Value"

// ValueObject is implemented by single-value wrapper types. Any type with a
// niladic Value method returning exactly one result is treated as one, so
// uuid.UUID or sql.NullString, whose Value also returns an error, are not.
type ValueObject[P any] interface {
	Value() P
}

// step reads one member off a value. ok is false when the chain hits a nil.
type step func(reflect.Value) (reflect.Value, bool)

// ResolvedField is the outcome of resolving a dotted path against a type.
// Path is the canonical spelling, with member names in their declared case
// and wrapper unwraps spelled out. Type is nil when some segment could not be
// matched, in which case Path still carries the segments as given.
type ResolvedField struct {
	Path string
	Type reflect.Type

	steps []step
}

// Resolved reports whether every segment was matched to a member.
func (f ResolvedField) Resolved() bool {
	return f.Type != nil
}

// Get reads the field off entity. ok is false when the field is unresolved or
// a pointer along the path is nil.
func (f ResolvedField) Get(entity any) (any, bool) {
	v, ok := f.value(reflect.ValueOf(entity))
	if !ok || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

func (f ResolvedField) value(v reflect.Value) (reflect.Value, bool) {
	if !f.Resolved() {
		return reflect.Value{}, false
	}
	for _, s := range f.steps {
		var ok bool
		if v, ok = s(v); !ok {
			return reflect.Value{}, false
		}
	}
	return indirect(v)
}

// Resolver maps (type, path) pairs to member accesses. Results are memoised
// for the life of the Resolver, and concurrent first requests for the same
// key perform a single resolution.
type Resolver struct {
	cache    *gocache.Cache
	group    singleflight.Group
	recorder Recorder
}

func NewResolver(recorder Recorder) *Resolver {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Resolver{
		cache:    gocache.New(gocache.NoExpiration, 0),
		recorder: recorder,
	}
}

// Resolve walks path against root. Segments are matched case-insensitively
// against exported fields, including promoted ones, and against exported
// niladic methods with a single result. A blank path is returned as is.
func (r *Resolver) Resolve(root reflect.Type, path string) ResolvedField {
	if strings.TrimSpace(path) == "" {
		return ResolvedField{Path: path}
	}

	key := cacheKey(root, path)
	if v, ok := r.cache.Get(key); ok {
		r.recorder.ResolutionCached(true)
		return v.(ResolvedField)
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		if v, ok := r.cache.Get(key); ok {
			return v, nil
		}
		f := resolve(root, path)
		r.cache.Set(key, f, gocache.NoExpiration)
		return f, nil
	})
	r.recorder.ResolutionCached(false)
	return v.(ResolvedField)
}

// Len returns the number of memoised resolutions.
func (r *Resolver) Len() int {
	return r.cache.ItemCount()
}

// Reset drops every memoised resolution.
func (r *Resolver) Reset() {
	r.cache.Flush()
}

func cacheKey(root reflect.Type, path string) string {
	return root.PkgPath() + "." + root.String() + "|" + path
}

func resolve(root reflect.Type, path string) ResolvedField {
	segments := splitPath(path)
	if len(segments) == 0 {
		return ResolvedField{Path: path, Type: deref(root)}
	}

	var (
		names   = make([]string, 0, len(segments)+2)
		steps   = make([]step, 0, len(segments)+2)
		current = deref(root)
		known   = true
		pending step
	)

	for i, seg := range segments {
		if strings.EqualFold(seg, ValueAccessor) {
			names = append(names, ValueAccessor)
			switch {
			case !known:
			case pending != nil:
				steps = append(steps, pending)
				pending = nil
			default:
				if inner, unwrap, ok := wrapped(current); ok {
					steps = append(steps, unwrap)
					current = deref(inner)
				} else {
					known = false
				}
			}
			continue
		}

		if !known {
			names = append(names, seg)
			continue
		}

		m, ok := lookupMember(current, seg)
		if !ok {
			names = append(names, seg)
			known = false
			continue
		}
		names = append(names, m.name)
		steps = append(steps, m.get)

		memberType := deref(m.typ)
		inner, unwrap, ok := wrapped(memberType)
		if !ok {
			current = memberType
			continue
		}
		if i+1 < len(segments) && strings.EqualFold(segments[i+1], ValueAccessor) {
			pending = unwrap
		} else {
			names = append(names, ValueAccessor)
			steps = append(steps, unwrap)
		}
		current = deref(inner)
	}

	f := ResolvedField{Path: strings.Join(names, ".")}
	if known {
		f.Type = current
		f.steps = steps
	}
	return f
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, ".") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

type member struct {
	name string
	typ  reflect.Type
	get  step
}

func lookupMember(t reflect.Type, name string) (member, bool) {
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() || !strings.EqualFold(f.Name, name) {
				continue
			}
			return member{name: f.Name, typ: f.Type, get: fieldStep(f.Index)}, true
		}
	}

	if m, ok := lookupMethod(t, name); ok {
		return member{name: m.Name, typ: m.Type.Out(0), get: methodStep(m.Name)}, true
	}
	return member{}, false
}

// lookupMethod searches the pointer method set, which also holds value
// receivers, for an exported niladic method with one result.
func lookupMethod(t reflect.Type, name string) (reflect.Method, bool) {
	if t.Kind() == reflect.Interface {
		return reflect.Method{}, false
	}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if !strings.EqualFold(m.Name, name) {
			continue
		}
		if m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
			return m, true
		}
	}
	return reflect.Method{}, false
}

// wrapped reports whether t is a value-object wrapper and, if so, the type
// it holds and the step that reads it.
func wrapped(t reflect.Type) (reflect.Type, step, bool) {
	if m, ok := lookupMethod(t, ValueAccessor); ok && m.Name == ValueAccessor {
		return m.Type.Out(0), methodStep(ValueAccessor), true
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(ValueAccessor); ok && f.IsExported() {
			return f.Type, fieldStep(f.Index), true
		}
	}
	return nil, nil, false
}

func fieldStep(index []int) step {
	return func(v reflect.Value) (reflect.Value, bool) {
		v, ok := indirect(v)
		if !ok || v.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		f, err := v.FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, false
		}
		return f, true
	}
}

func methodStep(name string) step {
	return func(v reflect.Value) (reflect.Value, bool) {
		m, ok := method(v, name)
		if !ok {
			return reflect.Value{}, false
		}
		return m.Call(nil)[0], true
	}
}

// method finds name on v, taking v's address or a copy of it when the method
// has a pointer receiver.
func method(v reflect.Value, name string) (reflect.Value, bool) {
	v, ok := indirect(v)
	if !ok || !v.CanInterface() {
		return reflect.Value{}, false
	}
	if v.CanAddr() {
		v = v.Addr()
	} else {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	m := v.MethodByName(name)
	return m, m.IsValid()
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
