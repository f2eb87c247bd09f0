package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	return &Builder{
		PackageID:         "0xpkg",
		SurveyLimitID:     "0xlimit",
		ProfileRegistryID: "0xregistry",
		BadgeStatsID:      "0xstats",
		AdminCapID:        "0xadmincap",
	}
}

func TestCreateSurvey(t *testing.T) {
	b := testBuilder()

	tx := b.CreateSurvey(SurveyParams{
		Title:       "Snapshot poll",
		Description: "quick one",
		Questions: []QuestionInput{
			{Prompt: "Yes or no?", Options: []string{"Yes", "No"}, MaxSelections: 1},
			{Prompt: "Pick two", Options: []string{"a", "b", "c"}, AllowsMultiple: true, MaxSelections: 2},
		},
	})

	require.Len(t, tx.Calls, 3)
	assert.Equal(t, "0xpkg::survey::create_survey", tx.Calls[0].Target)
	assert.Equal(t, ObjectArg("0xlimit"), tx.Calls[0].Args[0])
	assert.Equal(t, PureArg("Snapshot poll"), tx.Calls[0].Args[1])

	// Each question call consumes the create_survey result.
	for i := 1; i < 3; i++ {
		assert.Equal(t, "0xpkg::survey::add_question", tx.Calls[i].Target)
		require.NotNil(t, tx.Calls[i].Args[0].Result)
		assert.Equal(t, 0, *tx.Calls[i].Args[0].Result)
	}
	assert.Equal(t, PureArg([]string{"a", "b", "c"}), tx.Calls[2].Args[2])
	assert.Equal(t, PureArg(true), tx.Calls[2].Args[3])
}

func TestCreateSurveyWithBadge(t *testing.T) {
	tx := testBuilder().CreateSurveyWithBadge(SurveyParams{Title: "t"}, "0xbadge")
	require.Len(t, tx.Calls, 1)
	assert.Equal(t, "0xpkg::survey::create_survey_with_badge", tx.Calls[0].Target)
	assert.Equal(t, ObjectArg("0xbadge"), tx.Calls[0].Args[0])
}

func TestSubmitResponse(t *testing.T) {
	tx := testBuilder().SubmitResponse("0xsurvey", "0xprofilestats", []AnswerInput{
		{QuestionIndex: 0, SelectedOptions: []int{1}},
		{QuestionIndex: 1, FreeText: "other"},
	})

	require.Len(t, tx.Calls, 2)
	for _, call := range tx.Calls {
		assert.Equal(t, "0xpkg::survey::submit_response", call.Target)
		assert.Equal(t, ObjectArg("0xsurvey"), call.Args[0])
	}
	assert.Equal(t, PureArg([]int{1}), tx.Calls[0].Args[3])
	assert.Equal(t, PureArg("other"), tx.Calls[1].Args[4])
}

func TestCloseSurvey(t *testing.T) {
	tx := testBuilder().CloseSurvey("0xsurvey")
	require.Len(t, tx.Calls, 1)
	assert.Equal(t, "0xpkg::survey::close_survey", tx.Calls[0].Target)
}

func TestCreateProfile(t *testing.T) {
	tx := testBuilder().CreateProfile("alice", "hi")
	require.Len(t, tx.Calls, 1)
	call := tx.Calls[0]
	assert.Equal(t, "0xpkg::profile::create_profile", call.Target)
	assert.Equal(t, ObjectArg("0xregistry"), call.Args[0])
	assert.Equal(t, ObjectArg(ClockObjectID), call.Args[3])
}

func TestMintCreatorBadge(t *testing.T) {
	tx := testBuilder().MintCreatorBadge(2, "0xrecipient")
	require.Len(t, tx.Calls, 1)
	call := tx.Calls[0]
	assert.Equal(t, "0xpkg::badge::mint_creator_badge", call.Target)
	assert.Equal(t, ObjectArg("0xadmincap"), call.Args[0])
	assert.Equal(t, ObjectArg("0xstats"), call.Args[1])
	assert.Equal(t, PureArg(uint8(2)), call.Args[2])
	assert.Equal(t, PureArg("0xrecipient"), call.Args[3])
}

func TestIsValidAddress(t *testing.T) {
	valid := "0x" + "ab12" + "000000000000000000000000000000000000000000000000000000000000"
	require.Len(t, valid, 66)

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"valid", valid, true},
		{"too short", "0xab12", false},
		{"missing prefix", valid[2:] + "ab", false},
		{"non-hex characters", "0x" + "zz12" + valid[6:], false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidAddress(tc.address))
		})
	}
}
