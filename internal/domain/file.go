package domain

// File is an opaque content blob. Content travels inline on the API; the
// stored document keeps it inline too unless an external content store is
// configured, in which case ContentRef points at the object and Content is empty.
type File struct {
	Document
	Content     string `json:"content,omitempty"`
	ContentRef  string `json:"contentRef,omitempty"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	BlurHash    string `json:"blurHash,omitempty"` // set when the content is an image data URL
}

// FileUpdate is a single typed mutation of a File document.
type FileUpdate interface {
	applyFile(f *File) bool
}

// SetContent replaces the stored content and its derived metadata.
type SetContent struct {
	Content     string
	ContentRef  string
	Size        int
	ContentType string
	BlurHash    string
}

func (s SetContent) applyFile(f *File) bool {
	f.Content = s.Content
	f.ContentRef = s.ContentRef
	f.Size = s.Size
	f.ContentType = s.ContentType
	f.BlurHash = s.BlurHash
	return true
}

// Apply runs the updates in order and reports whether the file changed.
func (f *File) Apply(updates ...FileUpdate) bool {
	changed := false
	for _, up := range updates {
		if up.applyFile(f) {
			changed = true
		}
	}
	if changed {
		f.Touch()
	}
	return changed
}
