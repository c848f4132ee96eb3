// Package translator owns the process-wide shader translator used to turn the
// WebGL2 material sources into what the local driver accepts.
package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// Get returns the shared translator, creating it on first use.
func Get() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = fmt.Errorf("failed to create shader translator: %w", initErr)
		}
	})
	return translator, initErr
}

// Stage is a shader stage name as the translator expects it.
type Stage string

const (
	Vertex   Stage = "vertex"
	Fragment Stage = "fragment"
)

// Translated is a translated stage plus the driver-visible name of each
// uniform and attribute it declares.
type Translated struct {
	Code  string
	Names map[string]string
}

// Translate converts a WebGL2 source to desktop GLSL 4.10 or, when gles is
// set, to ESSL.
func Translate(src string, stage Stage, gles bool) (*Translated, error) {
	t, err := Get()
	if err != nil {
		return nil, err
	}
	format := gst.OutputFormatGLSL410
	if gles {
		format = gst.OutputFormatESSL
	}
	out, err := t.TranslateShader(src, string(stage), gst.ShaderSpecWebGL2, format)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return &Translated{Code: out.Code, Names: names}, nil
}

// Name returns the driver-visible name for a declared identifier, falling back
// to the identifier itself.
func (t *Translated) Name(ident string) string {
	if mapped, ok := t.Names[ident]; ok && mapped != "" {
		return mapped
	}
	return ident
}
