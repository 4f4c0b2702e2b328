package http

// Header sets that mimic a desktop browser. The are.na image CDNs sit behind
// bot filtering that rejects bare Go user agents, so every outbound request
// carries a realistic header profile.

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

var commonHeaders = map[string]string{
	"User-Agent":      defaultUserAgent,
	"Accept-Language": "en-US,en;q=0.9",
}

var apiHeaders = map[string]string{
	"Accept":         "application/json, text/plain, */*",
	"Sec-Fetch-Site": "same-site",
	"Sec-Fetch-Mode": "cors",
	"Sec-Fetch-Dest": "empty",
	"Referer":        "https://www.are.na/",
}

var imageHeaders = map[string]string{
	"Accept":         "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
	"Sec-Fetch-Site": "cross-site",
	"Sec-Fetch-Mode": "no-cors",
	"Sec-Fetch-Dest": "image",
	"Referer":        "https://www.are.na/",
}

// APIHeaders returns headers for listing API requests.
func APIHeaders() map[string]string {
	return mergeHeaders(commonHeaders, apiHeaders)
}

// ImageHeaders returns headers for image downloads.
func ImageHeaders() map[string]string {
	return mergeHeaders(commonHeaders, imageHeaders)
}

func mergeHeaders(sets ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			merged[k] = v
		}
	}
	return merged
}
