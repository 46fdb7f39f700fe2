package source

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"stockcount/internal"
)

// parseEML loads the first supported attachment of a saved e-mail. When the
// message has none, an HTML table in the body is used instead.
func parseEML(blob []byte, opts Options) (internal.Table, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(blob))
	if err != nil {
		return internal.Table{}, err
	}

	parts := append([]*enmime.Part{}, env.Attachments...)
	parts = append(parts, env.Inlines...)
	for _, att := range parts {
		name := strings.TrimSpace(att.FileName)
		ext := strings.ToLower(filepath.Ext(name))
		if name == "" || ext == ".eml" {
			continue
		}
		if CheckFile(name, int64(len(att.Content)), opts.MaxUploadMB) != nil {
			continue
		}
		table, err := LoadBytes(name, att.Content, opts)
		if err != nil {
			return internal.Table{}, err
		}
		table.Name = name
		return table, nil
	}

	if env.HTML != "" && looksLikeHTML([]byte(env.HTML)) {
		return parseHTMLTable([]byte(env.HTML))
	}
	return internal.Table{}, errors.New("message has no csv, xlsx or html table attachment")
}
