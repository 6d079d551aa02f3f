package labeling

import "encoding/json"

// PayloadType is the only payload kind the workspace writes
const PayloadType = "classification"

// DefaultSource is written to payload.source unless overridden
const DefaultSource = "web-ui"

// Payload is the classification payload stored in annotation.payload_json.
// CategoryID and COCO.CategoryID encode as null for an unlabeled selection.
type Payload struct {
	Type         string    `json:"type"`
	CategoryIDs  []LabelID `json:"category_ids"`
	CategoryID   *LabelID  `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	COCO         COCORef   `json:"coco"`
	Source       string    `json:"source"`
}

// COCORef mirrors the COCO image/category pair
type COCORef struct {
	ImageID    string   `json:"image_id"`
	CategoryID *LabelID `json:"category_id"`
}

// ToMap renders the payload in the same loose form ReadLabelIDs accepts
func (p Payload) ToMap() map[string]any {
	ids := make([]any, len(p.CategoryIDs))
	for i, id := range p.CategoryIDs {
		ids[i] = id
	}
	m := map[string]any{
		"type":         p.Type,
		"category_ids": ids,
		"category_id":  labelIDOrNil(p.CategoryID),
		"coco": map[string]any{
			"image_id":    p.COCO.ImageID,
			"category_id": labelIDOrNil(p.COCO.CategoryID),
		},
		"source": p.Source,
	}
	if p.CategoryName != "" {
		m["category_name"] = p.CategoryName
	}
	return m
}

func labelIDOrNil(id *LabelID) any {
	if id == nil {
		return nil
	}
	return *id
}

// ReadLabelIDs extracts label IDs from a raw payload. The category_ids array
// wins; a finite scalar category_id is the legacy fallback; anything else
// reads as no labels.
func ReadLabelIDs(payload map[string]any) []LabelID {
	if payload == nil {
		return []LabelID{}
	}

	if raw, ok := payload["category_ids"]; ok {
		if ids, isArray := arrayValues(raw); isArray {
			return NormalizeValues(ids)
		}
	}

	if id, ok := toLabelID(payload["category_id"]); ok {
		return []LabelID{id}
	}

	return []LabelID{}
}

// arrayValues accepts the slice shapes a payload map can realistically hold
func arrayValues(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []LabelID:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case json.RawMessage:
		var decoded []any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, false
		}
		return decoded, true
	default:
		return nil, false
	}
}

// ResolveActiveSelection keeps the IDs that name an active label, normalized
func ResolveActiveSelection(ids []LabelID, labels []Label) []LabelID {
	active := make(map[LabelID]struct{}, len(labels))
	for _, l := range labels {
		if l.IsActive {
			active[l.ID] = struct{}{}
		}
	}

	filtered := make([]LabelID, 0, len(ids))
	for _, id := range ids {
		if _, ok := active[id]; ok {
			filtered = append(filtered, id)
		}
	}
	return NormalizeIDs(filtered)
}

// BuiltPayload is the outcome of BuildPayload
type BuiltPayload struct {
	Payload              Payload
	SelectedLabelIDs     []LabelID
	IsUnlabeledSelection bool
}

type payloadOptions struct {
	source string
}

// PayloadOption customizes BuildPayload
type PayloadOption func(*payloadOptions)

// WithSource sets payload.source. Blank values keep DefaultSource.
func WithSource(source string) PayloadOption {
	return func(o *payloadOptions) {
		if source != "" {
			o.source = source
		}
	}
}

// BuildPayload resolves ids against the active labels and renders the payload.
// An empty resolved set yields the unlabeled shape. ok is false only when the
// first resolved ID names no active label.
func BuildPayload(assetID string, ids []LabelID, labels []Label, opts ...PayloadOption) (BuiltPayload, bool) {
	o := payloadOptions{source: DefaultSource}
	for _, opt := range opts {
		opt(&o)
	}

	resolved := ResolveActiveSelection(ids, labels)
	if len(resolved) == 0 {
		return BuiltPayload{
			Payload: Payload{
				Type:        PayloadType,
				CategoryIDs: []LabelID{},
				COCO:        COCORef{ImageID: assetID},
				Source:      o.source,
			},
			SelectedLabelIDs:     []LabelID{},
			IsUnlabeledSelection: true,
		}, true
	}

	primary, found := findActiveLabel(labels, resolved[0])
	if !found {
		return BuiltPayload{}, false
	}

	categoryID := primary.ID
	cocoCategoryID := primary.ID
	return BuiltPayload{
		Payload: Payload{
			Type:         PayloadType,
			CategoryIDs:  resolved,
			CategoryID:   &categoryID,
			CategoryName: primary.Name,
			COCO:         COCORef{ImageID: assetID, CategoryID: &cocoCategoryID},
			Source:       o.source,
		},
		SelectedLabelIDs: resolved,
	}, true
}

func findActiveLabel(labels []Label, id LabelID) (Label, bool) {
	for _, l := range labels {
		if l.IsActive && l.ID == id {
			return l, true
		}
	}
	return Label{}, false
}

// UpsertInput is the body of an annotation upsert
type UpsertInput struct {
	AssetID              string  `json:"asset_id"`
	Status               Status  `json:"status"`
	Payload              Payload `json:"payload_json"`
	IsUnlabeledSelection bool    `json:"-"`
}

// BuildUpsertInput builds the payload and derives the status it should be saved with
func BuildUpsertInput(assetID string, current Status, ids []LabelID, labels []Label, opts ...PayloadOption) (UpsertInput, bool) {
	built, ok := BuildPayload(assetID, ids, labels, opts...)
	if !ok {
		return UpsertInput{}, false
	}
	return UpsertInput{
		AssetID:              assetID,
		Status:               NextStatus(current, built.SelectedLabelIDs),
		Payload:              built.Payload,
		IsUnlabeledSelection: built.IsUnlabeledSelection,
	}, true
}
