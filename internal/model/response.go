package model

// Response is the envelope returned by every JSON endpoint. Success is always
// present; the remaining fields are filled as the endpoint requires.
type Response struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	User     interface{} `json:"user,omitempty"`
	Count    *int        `json:"count,omitempty"`
	Affected *int64      `json:"affected,omitempty"`
}

// SessionUser is the user object returned by login and me.
type SessionUser struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	LoginTime int64  `json:"loginTime,omitempty"`
}

// UploadResult describes a stored upload.
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	URL          string `json:"url"`
}
