package httpapi

import "net/http"

const indexText = `lircd2toml: convert lircd.conf remote definitions to rc-core keymaps

GET  /convert?url=<lircd.conf url>[&target=toml|yaml][&profile=<url>][&encoding=<name>][&fileName=<name>]
POST /api/convert  {"lircd": "<lircd.conf text>" | "url": "<url>", "target", "profile", "encoding", "fileName"}
GET  /healthz
GET  /metrics
`

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	WriteText(w, http.StatusOK, indexText)
}
