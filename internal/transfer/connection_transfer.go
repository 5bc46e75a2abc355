package transfer

// ManualConnectRequest links a platform account whose credentials the
// user supplies directly instead of via OAuth. Credentials carries the
// platform-specific fields as free-form JSON.
type ManualConnectRequest struct {
	Platform    string            `json:"platform"`
	AccountName string            `json:"account_name"`
	Credentials map[string]string `json:"credentials"`
}

type FacebookUserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FacebookPage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type FacebookPagesResponse struct {
	Data []FacebookPage `json:"data"`
}

type LinkedinUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}
