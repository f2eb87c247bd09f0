package chain

import (
	"context"
	"fmt"
)

// ClockObjectID is the shared on-chain clock passed to calls that stamp
// timestamps.
const ClockObjectID = "0x6"

// Arg is one argument of a move call. Exactly one field is set.
type Arg struct {
	Object string      `json:"object,omitempty"` // object id
	Pure   interface{} `json:"pure,omitempty"`   // string, bool, u8, address, []string
	Result *int        `json:"result,omitempty"` // index of an earlier call whose result is consumed
}

// ObjectArg references an on-chain object by id.
func ObjectArg(id string) Arg { return Arg{Object: id} }

// PureArg passes a plain value.
func PureArg(v interface{}) Arg { return Arg{Pure: v} }

// ResultArg consumes the result of the call at the given index within the
// same transaction, the way a freshly created survey handle is threaded
// into the add_question calls that follow it.
func ResultArg(callIndex int) Arg { return Arg{Result: &callIndex} }

// MoveCall is a single contract entry-point invocation.
type MoveCall struct {
	Target string `json:"target"` // package::module::function
	Args   []Arg  `json:"args"`
}

// Transaction is an ordered list of move calls executed atomically once
// signed. Building one performs no IO; execution happens through a
// Signer.
type Transaction struct {
	Calls []MoveCall `json:"calls"`
}

func (t *Transaction) add(target string, args ...Arg) int {
	t.Calls = append(t.Calls, MoveCall{Target: target, Args: args})
	return len(t.Calls) - 1
}

// ExecuteResult reports the outcome of a signed, submitted transaction.
type ExecuteResult struct {
	Digest string `json:"digest"`
	Status string `json:"status"`
}

// Signer is the external wallet capability: sign a transaction, submit
// it and report success or failure. Implementations live outside this
// repository; tests provide mocks.
type Signer interface {
	SignAndExecute(ctx context.Context, tx *Transaction) (*ExecuteResult, error)
}

// QuestionInput is one question of a survey being created.
type QuestionInput struct {
	Prompt         string
	Options        []string
	AllowsMultiple bool
	MaxSelections  uint8
}

// SurveyParams carries the fields of a new on-chain survey.
type SurveyParams struct {
	Title       string
	Description string
	Questions   []QuestionInput
}

// AnswerInput is one answer of a survey response.
type AnswerInput struct {
	QuestionIndex   int
	SelectedOptions []int
	FreeText        string
}

// Builder constructs transactions against one deployed package and its
// shared objects.
type Builder struct {
	PackageID         string
	SurveyLimitID     string
	ProfileRegistryID string
	BadgeStatsID      string
	AdminCapID        string
}

func (b *Builder) target(module, function string) string {
	return fmt.Sprintf("%s::%s::%s", b.PackageID, module, function)
}

// CreateSurvey builds a free survey creation checked against the shared
// per-user limit object.
func (b *Builder) CreateSurvey(params SurveyParams) *Transaction {
	tx := &Transaction{}
	survey := tx.add(b.target("survey", "create_survey"),
		ObjectArg(b.SurveyLimitID),
		PureArg(params.Title),
		PureArg(params.Description),
	)
	b.addQuestions(tx, survey, params.Questions)
	return tx
}

// CreateSurveyWithBadge builds a survey creation authorized by an owned
// creator badge instead of the free limit.
func (b *Builder) CreateSurveyWithBadge(params SurveyParams, badgeID string) *Transaction {
	tx := &Transaction{}
	survey := tx.add(b.target("survey", "create_survey_with_badge"),
		ObjectArg(badgeID),
		PureArg(params.Title),
		PureArg(params.Description),
	)
	b.addQuestions(tx, survey, params.Questions)
	return tx
}

func (b *Builder) addQuestions(tx *Transaction, survey int, questions []QuestionInput) {
	for _, q := range questions {
		tx.add(b.target("survey", "add_question"),
			ResultArg(survey),
			PureArg(q.Prompt),
			PureArg(q.Options),
			PureArg(q.AllowsMultiple),
			PureArg(q.MaxSelections),
		)
	}
}

// SubmitResponse builds a response submission for a survey.
func (b *Builder) SubmitResponse(surveyID, profileStatsID string, answers []AnswerInput) *Transaction {
	tx := &Transaction{}
	for _, a := range answers {
		tx.add(b.target("survey", "submit_response"),
			ObjectArg(surveyID),
			ObjectArg(profileStatsID),
			PureArg(a.QuestionIndex),
			PureArg(a.SelectedOptions),
			PureArg(a.FreeText),
		)
	}
	return tx
}

// CloseSurvey builds a survey close call.
func (b *Builder) CloseSurvey(surveyID string) *Transaction {
	tx := &Transaction{}
	tx.add(b.target("survey", "close_survey"), ObjectArg(surveyID))
	return tx
}

// CreateProfile builds a profile registration.
func (b *Builder) CreateProfile(username, bio string) *Transaction {
	tx := &Transaction{}
	tx.add(b.target("profile", "create_profile"),
		ObjectArg(b.ProfileRegistryID),
		PureArg(username),
		PureArg(bio),
		ObjectArg(ClockObjectID),
	)
	return tx
}

// MintCreatorBadge builds the admin-only badge mint for a recipient.
func (b *Builder) MintCreatorBadge(tier uint8, recipient string) *Transaction {
	tx := &Transaction{}
	tx.add(b.target("badge", "mint_creator_badge"),
		ObjectArg(b.AdminCapID),
		ObjectArg(b.BadgeStatsID),
		PureArg(tier),
		PureArg(recipient),
	)
	return tx
}

// IsValidAddress reports whether s looks like a chain address: 0x prefix
// followed by 64 hex characters.
func IsValidAddress(s string) bool {
	if len(s) != 66 || s[0] != '0' || s[1] != 'x' {
		return false
	}
	for _, c := range s[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
