package api

import (
	"encoding/json"
	"mime"
	"net/http"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/gin-gonic/gin"
)

// Content types accepted by PATCH endpoints
const (
	ContentTypeJSONPatch  = "application/json-patch+json"
	ContentTypeMergePatch = "application/merge-patch+json"
)

// applyPatch applies the request body to the JSON form of original. A JSON
// Patch (RFC 6902) is expected for application/json-patch+json; any other
// content type is read as a JSON Merge Patch (RFC 7386).
func applyPatch(c *gin.Context, original any) ([]byte, error) {
	patchBytes, err := readBody(c)
	if err != nil {
		return nil, err
	}

	originalBytes, err := json.Marshal(original)
	if err != nil {
		return nil, ServerError("Failed to serialize entity")
	}

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == ContentTypeJSONPatch {
		patch, err := jsonpatch.DecodePatch(patchBytes)
		if err != nil {
			return nil, &RequestError{
				Status:  http.StatusBadRequest,
				Code:    "invalid_patch",
				Message: "Invalid JSON Patch: " + err.Error(),
			}
		}
		modified, err := patch.Apply(originalBytes)
		if err != nil {
			return nil, &RequestError{
				Status:  http.StatusUnprocessableEntity,
				Code:    "patch_failed",
				Message: "Failed to apply patch: " + err.Error(),
			}
		}
		return modified, nil
	}

	modified, err := jsonpatch.MergePatch(originalBytes, patchBytes)
	if err != nil {
		return nil, &RequestError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_patch",
			Message: "Invalid merge patch: " + err.Error(),
		}
	}
	return modified, nil
}
