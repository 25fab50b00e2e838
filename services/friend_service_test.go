package services

import (
	"context"
	"testing"

	"hostelswap_server/models"
	"hostelswap_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFriendService() (*FriendService, *fakeFriendStore, *recordingNotifier) {
	store := newFakeFriendStore()
	notifier := &recordingNotifier{}
	return &FriendService{
		Friends:  store,
		Users:    newFakeUserStore(newUser("alice", models.GenderFemale, nil), newUser("bob", models.GenderMale, nil)),
		Notifier: notifier,
		Now:      fixedClock,
	}, store, notifier
}

func TestFriendRequest_AcceptFlow(t *testing.T) {
	svc, _, notifier := newFriendService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{models.EventFriendRequest}, notifier.eventsFor("bob"))

	bobRequests, err := svc.ListRequests(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobRequests.Incoming, 1)
	assert.Equal(t, "alice", bobRequests.Incoming[0].FriendID)
	aliceRequests, err := svc.ListRequests(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceRequests.Outgoing, 1)

	_, err = svc.Respond(ctx, "alice", "bob", FriendActionAccept)
	assertKind(t, err, utils.KindValidation)

	accepted, err := svc.Respond(ctx, "bob", "alice", FriendActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.FriendStatusAccepted, accepted.Status)
	assert.Equal(t, []string{models.EventFriendRequestAccepted}, notifier.eventsFor("alice"))

	for _, user := range []string{"alice", "bob"} {
		friends, err := svc.ListFriends(ctx, user)
		require.NoError(t, err)
		require.Len(t, friends, 1, user)
		require.NotNil(t, friends[0].Profile)
	}
}

func TestFriendRequest_Rejections(t *testing.T) {
	svc, _, _ := newFriendService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "alice")
	assertKind(t, err, utils.KindValidation)

	_, err = svc.SendRequest(ctx, "alice", "ghost")
	assertKind(t, err, utils.KindNotFound)
	_, err = svc.SendRequest(ctx, "ghost", "bob")
	assertKind(t, err, utils.KindNotFound)

	_, err = svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, "bob", "alice")
	assertKind(t, err, utils.KindConflict)
}

func TestFriendRequest_RejectAndRemove(t *testing.T) {
	svc, store, _ := newFriendService()
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "bob", "alice", FriendActionReject)
	require.NoError(t, err)
	assert.Empty(t, store.rows)

	_, err = svc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, "bob", "alice", FriendActionAccept)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFriend(ctx, "alice", "bob"))
	assert.Empty(t, store.rows)
	assertKind(t, svc.RemoveFriend(ctx, "alice", "bob"), utils.KindNotFound)
}
