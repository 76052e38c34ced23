package report

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// BuildForm serializes a draft into the multipart body its template's
// endpoint expects: every wire key in order, then captions[i] (empty
// captions default to "Image {i+1}"), then images[i]. The draft is held
// locked for the whole serialization so an edit landing mid-build cannot
// produce a torn form.
func BuildForm(d *Draft) (contentType string, body *bytes.Buffer, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	body = &bytes.Buffer{}
	w := multipart.NewWriter(body)
	tpl := d.tpl

	for _, wireKey := range tpl.WireOrder {
		src := tpl.SourceField(wireKey)
		if err := w.WriteField(wireKey, d.wireValue(src)); err != nil {
			return "", nil, fmt.Errorf("write field %s: %w", wireKey, err)
		}
	}

	for i, caption := range d.captions {
		if caption == "" {
			caption = fmt.Sprintf("Image %d", i+1)
		}
		if err := w.WriteField(fmt.Sprintf("captions[%d]", i), caption); err != nil {
			return "", nil, fmt.Errorf("write caption %d: %w", i, err)
		}
	}

	for i, img := range d.images {
		part, err := w.CreateFormFile(fmt.Sprintf("images[%d]", i), img.Name)
		if err != nil {
			return "", nil, fmt.Errorf("create image part %d: %w", i, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return "", nil, fmt.Errorf("write image %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("close form: %w", err)
	}
	return w.FormDataContentType(), body, nil
}
