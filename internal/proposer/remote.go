package proposer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/robalobadob/balda/internal/turn"
)

// Remote posts the turn request as JSON to <BaseURL>/propose and expects
// {"move": "<descriptor>"} back. The deadline comes from ctx.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

func NewRemote(baseURL string) *Remote {
	return &Remote{BaseURL: strings.TrimRight(baseURL, "/"), Client: http.DefaultClient}
}

type remoteReply struct {
	Move string `json:"move"`
}

func (r *Remote) Propose(ctx context.Context, req turn.Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	url := r.BaseURL + "/propose"
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(hreq)
	if err != nil {
		return "", fmt.Errorf("proposer %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("proposer %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(out)))
	}
	var reply remoteReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("proposer %s: decode: %w", url, err)
	}
	return reply.Move, nil
}
