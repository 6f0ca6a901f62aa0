package inline

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"text/template"

	"github.com/wippyai/merkleized-metadata/errors"
)

// loaderTemplate is the synthesized entry module. init() is memoized on
// a single promise: the first call starts instantiation, later and
// concurrent calls get the same promise back.
var loaderTemplate = template.Must(template.New("loader").Parse(`import * as bg from "{{.Binding}}";

const wasmBase64 = "{{.Payload}}";

function base64ToBytes(base64) {
    const binString = atob(base64);
    return Uint8Array.from(binString, (m) => m.codePointAt(0));
}

let initPromise = undefined;

export function init() {
    if (!initPromise) {
        // The wasm imports its host functions from the binding module.
        const imports = {
            "{{.Binding}}": bg,
        };
        initPromise = WebAssembly.instantiate(base64ToBytes(wasmBase64), imports).then((wasm) => {
            bg.__wbg_set_wasm(wasm.instance.exports);
        });
    }
    return initPromise;
}

export * from "{{.Binding}}";
`))

// initDeclaration is appended to the loader's declaration file.
const initDeclaration = "\nexport function init(): Promise<void>;\n"

var embeddedPayload = regexp.MustCompile(`const wasmBase64 = "([A-Za-z0-9+/=]*)";`)

type loaderData struct {
	Binding string
	Payload string
}

// EncodePayload returns the text form of a wasm binary as embedded in
// the loader: standard base64 alphabet, padded, no line breaks.
func EncodePayload(wasm []byte) string {
	return base64.StdEncoding.EncodeToString(wasm)
}

// DecodePayload reverses EncodePayload.
func DecodePayload(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

// RenderLoader returns the loader module source that embeds payload and
// imports the binding module at specifier.
func RenderLoader(specifier, payload string) ([]byte, error) {
	var buf bytes.Buffer
	err := loaderTemplate.Execute(&buf, loaderData{Binding: specifier, Payload: payload})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EmbeddedText returns the base64 text embedded in a loader module
// produced by RenderLoader, without decoding it.
func EmbeddedText(loader []byte) (string, error) {
	m := embeddedPayload.FindSubmatch(loader)
	if m == nil {
		return "", errors.InvalidData(errors.PhaseLoad, "loader module has no embedded wasm payload")
	}
	return string(m[1]), nil
}

// EmbeddedPayload extracts and decodes the wasm binary from a loader
// module produced by RenderLoader.
func EmbeddedPayload(loader []byte) ([]byte, error) {
	text, err := EmbeddedText(loader)
	if err != nil {
		return nil, err
	}
	wasm, err := DecodePayload(text)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "decode embedded wasm payload")
	}
	return wasm, nil
}
