package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/John-Robertt/lircd2toml-go/internal/render"
)

const fallbackBaseName = "keymap"

func setAttachmentHeaders(w http.ResponseWriter, req convertRequest, target render.Target) error {
	filename, err := outputFileName(req, target)
	if err != nil {
		return err
	}
	// Add both filename and filename* for better UTF-8 compatibility.
	w.Header().Set("Content-Disposition", contentDispositionAttachment(filename))
	return nil
}

func outputFileName(req convertRequest, target render.Target) (string, error) {
	base := strings.TrimSpace(req.FileName)
	if base == "" {
		base = defaultBaseName(req.URL)
	}
	if strings.ContainsAny(base, "\r\n\x00") {
		return "", requestError("INVALID_ARGUMENT", "fileName 含有非法控制字符", "")
	}
	if strings.Contains(base, "/") || strings.Contains(base, "\\") {
		return "", requestError("INVALID_ARGUMENT", "fileName 不允许包含路径分隔符", "")
	}
	if len(base) > 200 {
		return "", requestError("INVALID_ARGUMENT", "fileName 过长", "max=200 bytes")
	}

	name := base
	if !hasExt(name) {
		name += target.Ext()
	}
	return name, nil
}

// defaultBaseName derives a name from the last path segment of the lircd.conf
// URL, dropping a .conf or .lircd suffix.
func defaultBaseName(rawURL string) string {
	if rawURL == "" {
		return fallbackBaseName
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallbackBaseName
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return fallbackBaseName
	}
	for {
		trimmed := strings.TrimSuffix(strings.TrimSuffix(base, ".conf"), ".lircd")
		if trimmed == base {
			break
		}
		base = trimmed
	}
	if base == "" || strings.ContainsAny(base, "\\\r\n\x00") {
		return fallbackBaseName
	}
	return base
}

func hasExt(name string) bool {
	i := strings.LastIndexByte(name, '.')
	return i > 0 && i < len(name)-1
}

func contentDispositionAttachment(filename string) string {
	// RFC 6266 + RFC 5987.
	escaped := strings.ReplaceAll(filename, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "\"", "\\\"")

	// pctEncode follows our deterministic encoding (space => %20).
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", escaped, pctEncode(filename))
}
