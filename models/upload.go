package models

import "io"

// Upload is a file received with a request, e.g. an avatar photo.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
