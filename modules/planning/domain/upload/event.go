// Package upload holds the notification raised when an uploaded object is complete.
package upload

import (
	"encoding/json"
	"fmt"

	"github.com/iota-uz/utilization/pkg/constants"
)

// ObjectFinalized announces that an object finished uploading to the blob store.
type ObjectFinalized struct {
	Bucket      string `json:"bucket" validate:"required"`
	Path        string `json:"path" validate:"required,max=1024"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty" validate:"gte=0"`
}

// Decode parses an event payload as pushed onto the upload queue.
func Decode(payload []byte) (ObjectFinalized, error) {
	var ev ObjectFinalized
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ObjectFinalized{}, fmt.Errorf("decode object finalized event: %w", err)
	}
	return ev, nil
}

// Validate checks the required fields of a decoded event.
func (e ObjectFinalized) Validate() error {
	return constants.Validate.Struct(e)
}

func (e ObjectFinalized) Encode() ([]byte, error) {
	return json.Marshal(e)
}
