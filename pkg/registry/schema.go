package registry

// Activity is one extracurricular offering and its roster. Participants are kept
// in signup order.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

func (a Activity) clone() Activity {
	out := a
	out.Participants = append(make([]string, 0, len(a.Participants)), a.Participants...)
	return out
}

func (a Activity) hasParticipant(email string) bool {
	return a.indexOf(email) >= 0
}

func (a Activity) indexOf(email string) int {
	for i, p := range a.Participants {
		if p == email {
			return i
		}
	}
	return -1
}

// Catalog maps activity name to its record. It is both the seed format and the
// body of the list response.
type Catalog map[string]Activity

// Clone deep-copies the catalog so callers never share participant slices.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for name, a := range c {
		out[name] = a.clone()
	}
	return out
}

// catalogSchema constrains catalog files loaded from disk.
const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1,
  "propertyNames": { "minLength": 1 },
  "additionalProperties": {
    "type": "object",
    "required": ["description", "schedule", "max_participants", "participants"],
    "additionalProperties": false,
    "properties": {
      "description":      { "type": "string", "minLength": 1 },
      "schedule":         { "type": "string", "minLength": 1 },
      "max_participants": { "type": "integer", "minimum": 1 },
      "participants": {
        "type": "array",
        "uniqueItems": true,
        "items": { "type": "string", "minLength": 1 }
      }
    }
  }
}`
