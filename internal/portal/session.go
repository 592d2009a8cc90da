package portal

import (
	"context"
	"fmt"
)

// SessionID fetches the download top page and returns the session id
// embedded in the hidden #sid field. The id is request-scoped on the
// portal side: a stale one yields a failed or structurally empty
// download with no explicit signal.
func (c *Client) SessionID(ctx context.Context) (string, error) {
	doc, err := c.getDocument(ctx, c.endpoints.DownloadIndex)
	if err != nil {
		return "", fmt.Errorf("fetch download index: %w", err)
	}

	sid, ok := doc.Find("input#sid").Attr("value")
	if !ok {
		return "", fmt.Errorf("session id input #sid: %w", ErrMissingElement)
	}
	return sid, nil
}
