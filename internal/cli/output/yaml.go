package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/redif-go/pkg/resp"
)

// YAMLFormatter formats replies as YAML.
type YAMLFormatter struct{}

// Format formats v as a single YAML document.
func (YAMLFormatter) Format(w io.Writer, v resp.Value) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Document(v)); err != nil {
		return err
	}
	return encoder.Close()
}
