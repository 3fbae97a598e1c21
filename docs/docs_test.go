package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocument(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("ReadDoc: %v", err)
	}
	if !json.Valid([]byte(doc)) {
		t.Fatal("rendered document is not valid JSON")
	}
	for _, path := range []string{`"/auth/register"`, `"/v1/operators"`, `"/v1/trackings/{number}/customs"`} {
		if !strings.Contains(doc, path) {
			t.Errorf("document lacks %s", path)
		}
	}
}
