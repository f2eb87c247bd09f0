package chain

import "encoding/json"

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// rpcError is an RPC-level error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OwnedObject is one typed move object owned by an address, with its raw
// field map. Field access goes through the decode helpers below because
// the node serializes numbers as JSON numbers or strings depending on
// width.
type OwnedObject struct {
	ObjectID string
	Type     string
	Fields   map[string]interface{}
}

// ownedObjectsPage mirrors the node's paginated getOwnedObjects result.
type ownedObjectsPage struct {
	Data []struct {
		Data struct {
			ObjectID string `json:"objectId"`
			Type     string `json:"type"`
			Content  struct {
				DataType string                 `json:"dataType"`
				Fields   map[string]interface{} `json:"fields"`
			} `json:"content"`
		} `json:"data"`
	} `json:"data"`
	HasNextPage bool    `json:"hasNextPage"`
	NextCursor  *string `json:"nextCursor"`
}

// Survey is an on-chain survey object.
type Survey struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Owner            string     `json:"owner"`
	IsOpen           bool       `json:"is_open"`
	Questions        []Question `json:"questions"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        int64      `json:"created_at"`
}

// Question is one prompt of a survey.
type Question struct {
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
	AllowsMultiple bool     `json:"allows_multiple"`
	MaxSelections  int      `json:"max_selections"`
}

// UserProfile is an on-chain profile object.
type UserProfile struct {
	ID             string `json:"id"`
	Owner          string `json:"owner"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	LastActivity   int64  `json:"last_activity"`
	StatsID        string `json:"stats_id"`
	GamificationID string `json:"gamification_id"`
}

// SurveyCreatorBadge is an on-chain badge entitling its owner to extra
// surveys beyond the base allowance.
type SurveyCreatorBadge struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	ImageURL            string `json:"image_url"`
	BadgeType           int    `json:"badge_type"`
	Tier                int    `json:"tier"`
	ExtraSurveysAllowed int    `json:"extra_surveys_allowed"`
	MintedAt            int64  `json:"minted_at"`
	Owner               string `json:"owner"`
}

// fieldString extracts a string field, returning "" when absent or of
// another type.
func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// fieldBool extracts a bool field.
func fieldBool(fields map[string]interface{}, key string) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}

// fieldInt64 extracts a numeric field. Wide integers arrive as strings,
// small ones as JSON numbers; both are handled.
func fieldInt64(fields map[string]interface{}, key string) int64 {
	switch v := fields[key].(type) {
	case float64:
		return int64(v)
	case string:
		var n int64
		for _, c := range v {
			if c < '0' || c > '9' {
				return 0
			}
			n = n*10 + int64(c-'0')
		}
		return n
	default:
		return 0
	}
}

// fieldStrings extracts a []string field.
func fieldStrings(fields map[string]interface{}, key string) []string {
	raw, ok := fields[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
