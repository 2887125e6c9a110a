package viewer

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"gallery-viewer/internal/mediatypes"
)

// Reasons carried by error routes.
const (
	ReasonMissingFolder = "missing_folder"
	ReasonMissingToken  = "missing_token"
	ReasonLinkExpired   = "link_expired"
	ReasonNotFound      = "not_found"
	ReasonListFailed    = "list_failed"
	ReasonClientError   = "client_error"
)

var reasonMessages = map[string]string{
	ReasonMissingFolder: "The link does not name a folder.",
	ReasonMissingToken:  "The link is missing its access token.",
	ReasonLinkExpired:   "This link has expired. Ask for a new one.",
	ReasonNotFound:      "Nothing was found for this link.",
	ReasonListFailed:    "The folder could not be listed. Try again later.",
	ReasonClientError:   "The gallery server could not be reached.",
}

// ReasonMessage returns a human readable explanation of an error reason.
func ReasonMessage(reason string) string {
	if msg, ok := reasonMessages[reason]; ok {
		return msg
	}
	return "Something went wrong while opening this gallery."
}

// Views served by the gallery server.
const (
	IndexPath = "/site/index.html"
	ErrorPath = "/site/error.html"
)

// IndexURL returns the landing URL of a folder.
func IndexURL(folder, token string) string {
	v := url.Values{}
	v.Set("folder", folder)
	v.Set("t", token)
	return IndexPath + "?" + v.Encode()
}

// ErrorRoute is an unrecoverable page-level failure.
type ErrorRoute struct {
	Code   int
	Reason string
}

// URL returns the error view URL carrying code and reason.
func (e ErrorRoute) URL() string {
	v := url.Values{}
	v.Set("code", strconv.Itoa(e.Code))
	v.Set("reason", e.Reason)
	return ErrorPath + "?" + v.Encode()
}

func (e *ErrorRoute) Error() string {
	return fmt.Sprintf("%d %s", e.Code, e.Reason)
}

// Params are the landing query parameters of a session.
type Params struct {
	Folder string
	Token  string
}

// ParseQuery validates the landing query. The folder is normalized.
func ParseQuery(v url.Values) (Params, *ErrorRoute) {
	folder, ok := mediatypes.NormalizeFolder(v.Get("folder"))
	if !ok {
		return Params{}, &ErrorRoute{Code: http.StatusBadRequest, Reason: ReasonMissingFolder}
	}
	token := strings.TrimSpace(v.Get("t"))
	if token == "" {
		return Params{}, &ErrorRoute{Code: http.StatusForbidden, Reason: ReasonMissingToken}
	}
	return Params{Folder: folder, Token: token}, nil
}

// ParseLanding parses a server-relative landing URL such as
// /site/index.html?folder=a/&t=x.
func ParseLanding(raw string) (Params, *ErrorRoute) {
	u, err := url.Parse(raw)
	if err != nil {
		return Params{}, &ErrorRoute{Code: http.StatusBadRequest, Reason: ReasonMissingFolder}
	}
	if u.Path == ErrorPath {
		code, _ := strconv.Atoi(u.Query().Get("code"))
		return Params{}, &ErrorRoute{Code: code, Reason: u.Query().Get("reason")}
	}
	return ParseQuery(u.Query())
}
