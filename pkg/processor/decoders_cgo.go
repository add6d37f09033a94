//go:build cgo

package processor

import (
	// goheif registers the HEIC/HEIF container formats. It links
	// against libde265 and therefore requires cgo.
	_ "github.com/jdeng/goheif"
)
