package queryir

import "fmt"

// KeyCode identifies a well-known backend key. Zero means "not well-known".
type KeyCode uint16

// Built-in key codes. Schema-declared property keys are numbered from
// FirstSchemaKeyCode upward.
const (
	KeyCodeID          KeyCode = 1
	KeyCodeLabel       KeyCode = 2
	KeyCodeProperties  KeyCode = 3
	KeyCodeOwnerVertex KeyCode = 4
	KeyCodeOtherVertex KeyCode = 5

	FirstSchemaKeyCode KeyCode = 100
)

// WellKnownKey is an entry of the well-known key enumeration.
type WellKnownKey struct {
	Code KeyCode
	Name string
}

// Built-in well-known keys. Their names are the backend enumeration names,
// which is what a pipeline would have to spell to address them directly.
var (
	KeyID          = WellKnownKey{Code: KeyCodeID, Name: "ID"}
	KeyLabel       = WellKnownKey{Code: KeyCodeLabel, Name: "LABEL"}
	KeyProperties  = WellKnownKey{Code: KeyCodeProperties, Name: "PROPERTIES"}
	KeyOwnerVertex = WellKnownKey{Code: KeyCodeOwnerVertex, Name: "OWNER_VERTEX"}
	KeyOtherVertex = WellKnownKey{Code: KeyCodeOtherVertex, Name: "OTHER_VERTEX"}
)

// BuiltinKeys returns the built-in part of the enumeration.
func BuiltinKeys() []WellKnownKey {
	return []WellKnownKey{KeyID, KeyLabel, KeyProperties, KeyOwnerVertex, KeyOtherVertex}
}

// IsBuiltin reports whether the key is one of the built-in system keys.
func (k WellKnownKey) IsBuiltin() bool {
	return k.Code != 0 && k.Code < FirstSchemaKeyCode
}

// PropertyKey addresses an element attribute in a backend query.
// It is either WellKnown (Code != 0) or Raw (Code == 0, Name is the
// property name as written in the pipeline).
type PropertyKey struct {
	Code KeyCode
	Name string
}

// WellKnown wraps an enumeration entry as a PropertyKey.
func WellKnown(k WellKnownKey) PropertyKey {
	return PropertyKey{Code: k.Code, Name: k.Name}
}

// Raw builds a key for a property the enumeration does not know.
func Raw(name string) PropertyKey {
	return PropertyKey{Name: name}
}

// IsWellKnown reports whether the key resolved against the enumeration.
func (k PropertyKey) IsWellKnown() bool { return k.Code != 0 }

// Is reports whether k is the well-known key w.
func (k PropertyKey) Is(w WellKnownKey) bool { return k.Code == w.Code && k.Code != 0 }

func (k PropertyKey) String() string {
	if k.IsWellKnown() {
		return fmt.Sprintf("%s#%d", k.Name, k.Code)
	}
	return fmt.Sprintf("%q", k.Name)
}

// describe returns the canonical-JSON form of the key.
func (k PropertyKey) describe() map[string]any {
	if k.IsWellKnown() {
		return map[string]any{"code": int64(k.Code), "name": k.Name}
	}
	return map[string]any{"raw": k.Name}
}
