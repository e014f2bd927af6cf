package engine

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
)

func TestTransitionFor(t *testing.T) {
    cases := []struct {
        name  string
        from  model.TicketStatus
        event EventKind
        to    model.TicketStatus
        ok    bool
    }{
        {"confirm reserved", model.StatusReserved, EvConfirm, model.StatusActive, true},
        {"cancel reserved", model.StatusReserved, EvCancel, model.StatusCancelled, true},
        {"timeout reserved", model.StatusReserved, EvTimeout, model.StatusCancelled, true},
        {"validate active", model.StatusActive, EvValidate, model.StatusUsed, true},
        {"cancel active", model.StatusActive, EvCancel, model.StatusCancelled, true},
        {"session end active", model.StatusActive, EvSessionEnd, model.StatusExpired, true},
        {"validate reserved", model.StatusReserved, EvValidate, "", false},
        {"confirm active", model.StatusActive, EvConfirm, "", false},
        {"confirm used", model.StatusUsed, EvConfirm, "", false},
        {"cancel used", model.StatusUsed, EvCancel, "", false},
        {"cancel expired", model.StatusExpired, EvCancel, "", false},
        {"validate cancelled", model.StatusCancelled, EvValidate, "", false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            tr, ok := TransitionFor(tc.from, tc.event)
            assert.Equal(t, tc.ok, ok)
            if tc.ok {
                assert.Equal(t, tc.to, tr.To)
            }
        })
    }
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
    terminal := []model.TicketStatus{model.StatusUsed, model.StatusCancelled, model.StatusExpired}
    all := []model.TicketStatus{
        model.StatusReserved, model.StatusActive,
        model.StatusUsed, model.StatusCancelled, model.StatusExpired,
    }
    events := []EventKind{EvConfirm, EvCancel, EvTimeout, EvValidate, EvSessionEnd}
    for _, from := range terminal {
        require.True(t, from.Terminal())
        for _, to := range all {
            assert.False(t, CanTransition(from, to), "%s must not move to %s", from, to)
        }
        for _, ev := range events {
            _, ok := TransitionFor(from, ev)
            assert.False(t, ok, "%s must not leave %s", ev, from)
        }
    }
}

func TestLiveAndTerminalArePartition(t *testing.T) {
    all := []model.TicketStatus{
        model.StatusReserved, model.StatusActive,
        model.StatusUsed, model.StatusCancelled, model.StatusExpired,
    }
    for _, s := range all {
        assert.NotEqual(t, s.Live(), s.Terminal(), "status %s", s)
    }
}
