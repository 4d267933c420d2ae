package city

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meta-node-blockchain/om-generals/pkg/events"
	"github.com/meta-node-blockchain/om-generals/pkg/generals"
	"github.com/meta-node-blockchain/om-generals/pkg/transport"
)

func TestJudge(t *testing.T) {
	cases := []struct {
		name  string
		tally Tally
		want  Verdict
	}{
		{"nothing received", Tally{}, VerdictLessThanTwoGenerals},
		{"single attack", Tally{Attack: 1, Received: 1}, VerdictLessThanTwoGenerals},
		{"single retreat", Tally{Retreat: 1, Received: 1}, VerdictLessThanTwoGenerals},
		{"two attack", Tally{Attack: 2, Received: 2}, VerdictAttack},
		{"two retreat", Tally{Retreat: 2, Received: 2}, VerdictRetreat},
		{"split", Tally{Attack: 1, Retreat: 1, Received: 2}, VerdictFailed},
		{"three attack", Tally{Attack: 3, Received: 3}, VerdictAttack},
		{"any disagreement fails", Tally{Attack: 3, Retreat: 1, Received: 4}, VerdictFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Judge(tc.tally))
		})
	}
}

func TestTallyAdd(t *testing.T) {
	var tally Tally
	tally.Add(generals.NewConclusionMessage(0, generals.Attack))
	tally.Add(generals.NewConclusionMessage(2, generals.Retreat))
	tally.Add(generals.NewConclusionMessage(3, generals.Attack))

	assert.Equal(t, 2, tally.Attack)
	assert.Equal(t, 1, tally.Retreat)
	assert.Equal(t, 3, tally.Received)
	assert.Equal(t, []string{"supreme_general", "general_2", "general_3"}, tally.Senders)
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("ERROR_LESS_THAN_TWO_GENERALS")
	require.NoError(t, err)
	assert.Equal(t, VerdictLessThanTwoGenerals, v)

	_, err = ParseVerdict("MAYBE")
	assert.Error(t, err)

	assert.Equal(t, VerdictAttack, FromOrder(generals.Attack))
	assert.Equal(t, VerdictRetreat, FromOrder(generals.Retreat))
}

type fixture struct {
	net     *transport.LocalNetwork
	city    *City
	sender  *transport.LocalTransport
	records *events.Recorder
}

func newFixture(t *testing.T, timeout time.Duration) *fixture {
	t.Helper()
	n := transport.NewLocalNetwork()
	t.Cleanup(func() { n.Close() })

	tr, err := n.Join(100)
	require.NoError(t, err)
	sender, err := n.Join(1)
	require.NoError(t, err)

	rec := events.NewRecorder()
	c, err := New(Config{Transport: tr, Sink: rec, ReceiveTimeout: timeout})
	require.NoError(t, err)
	return &fixture{net: n, city: c, sender: sender, records: rec}
}

func (f *fixture) report(t *testing.T, payloads ...string) {
	t.Helper()
	for _, p := range payloads {
		require.NoError(t, f.sender.Send(context.Background(), p, f.city.Addr()))
	}
}

func TestCollectAndJudge(t *testing.T) {
	cases := []struct {
		name     string
		expected int
		payloads []string
		want     Verdict
	}{
		{"one loyal general", 1, []string{"general_3~action=0"}, VerdictLessThanTwoGenerals},
		{"two attack", 2, []string{"general_1~action=1", "general_2~action=1"}, VerdictAttack},
		{"two retreat", 2, []string{"supreme_general~action=0", "general_3~action=0"}, VerdictRetreat},
		{"split", 2, []string{"general_1~action=1", "general_3~action=0"}, VerdictFailed},
		{"four disagreeing", 4, []string{"general_1~action=1", "supreme_general~action=0", "general_2~action=1", "general_3~action=0"}, VerdictFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 0)
			f.report(t, tc.payloads...)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			v, tally, err := f.city.CollectAndJudge(ctx, tc.expected)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
			assert.Equal(t, tc.expected, tally.Received)
			assert.False(t, tally.TimedOut)
			assert.Len(t, f.records.Filter(Source, events.KindVerdict), 1)
		})
	}
}

func TestCollectReadsExactlyExpected(t *testing.T) {
	f := newFixture(t, 0)
	f.report(t, "general_1~action=1", "general_2~action=1", "general_3~action=0")

	v, tally, err := f.city.CollectAndJudge(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, VerdictAttack, v)
	assert.Equal(t, 2, tally.Received)
}

func TestCollectZeroExpected(t *testing.T) {
	f := newFixture(t, 0)
	v, tally, err := f.city.CollectAndJudge(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, VerdictLessThanTwoGenerals, v)
	assert.Zero(t, tally.Received)
}

func TestCollectTimeoutJudgesOnWhatArrived(t *testing.T) {
	f := newFixture(t, 40*time.Millisecond)
	f.report(t, "general_1~action=1")

	v, tally, err := f.city.CollectAndJudge(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, VerdictLessThanTwoGenerals, v)
	assert.True(t, tally.TimedOut)
	assert.Equal(t, 1, tally.Received)
	assert.Len(t, f.records.Filter(Source, events.KindTimeout), 1)
}

func TestCollectMalformedIsFatal(t *testing.T) {
	f := newFixture(t, 0)
	f.report(t, "general_1~order=1")

	_, _, err := f.city.CollectAndJudge(context.Background(), 2)
	assert.ErrorIs(t, err, generals.ErrMalformedMessage)
}

func TestCollectCancelled(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := f.city.CollectAndJudge(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresTransport(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
