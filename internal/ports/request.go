package ports

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxRequestBodySize = 16 * 1024

var (
	//go:embed schemas/tap.schema.json
	tapSchemaSource string
	//go:embed schemas/purchase.schema.json
	purchaseSchemaSource string
	//go:embed schemas/save.schema.json
	saveSchemaSource string

	tapSchema      = jsonschema.MustCompileString("tap.schema.json", tapSchemaSource)
	purchaseSchema = jsonschema.MustCompileString("purchase.schema.json", purchaseSchemaSource)
	saveSchema     = jsonschema.MustCompileString("save.schema.json", saveSchemaSource)
)

var errInvalidBody = errors.New("invalid request body")
var errEmptyBody = errors.New("empty request body")

// decodeBody validates the request body against schema and decodes it into dst.
// Returns errEmptyBody when there is no body.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *jsonschema.Schema, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %w", errInvalidBody, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("%w: malformed json: %w", errInvalidBody, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: trailing data after json value", errInvalidBody)
	}

	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}
