// Copyright (c) 2026 Tribuna. All rights reserved.

/*
Package settings implements administrator-managed site settings.

A setting is a coded key/value record (the value is free-form JSON) used for
things like feature toggles, front-page copy, and theme configuration. Reads
vastly outnumber writes, so lookups by code go through a Redis read-through
cache that is invalidated on every write.
*/
package settings

import (
	"encoding/json"
	"time"
)

// Setting represents one administrator-managed configuration record.
type Setting struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// # Validation Bounds

const (
	CodeMinLen        = 3
	CodeMaxLen        = 64
	LabelMaxLen       = 256
	DescriptionMaxLen = 512
)

const (
	FieldCode        = "code"
	FieldLabel       = "label"
	FieldDescription = "description"
	FieldData        = "data"
)
