package rosca

import (
	"strconv"

	"roscachain/crypto"
	"roscachain/hostport"
)

const (
	EventTypeGroupCreated       = "rosca.group.created"
	EventTypeMemberJoined       = "rosca.member.joined"
	EventTypeGroupActivated     = "rosca.group.activated"
	EventTypeContributionMade   = "rosca.contribution.made"
	EventTypePayoutExecuted     = "rosca.payout.executed"
	EventTypeGroupCompleted     = "rosca.group.completed"
	EventTypeGroupStatusChanged = "rosca.group.status_changed"
)

// NewGroupCreatedEvent emits the canonical payload for a newly created
// group.
func NewGroupCreatedEvent(g *Group) hostport.Event {
	attrs := groupAttrs(g)
	return hostport.Event{Type: EventTypeGroupCreated, Attributes: attrs}
}

// NewMemberJoinedEvent emits the payload for a member taking a payout
// position in a group.
func NewMemberJoinedEvent(groupID uint64, member crypto.Address, position uint32) hostport.Event {
	return hostport.Event{
		Type: EventTypeMemberJoined,
		Attributes: map[string]string{
			"groupId":  strconv.FormatUint(groupID, 10),
			"member":   member.String(),
			"position": strconv.FormatUint(uint64(position), 10),
		},
	}
}

// NewGroupActivatedEvent emits the payload when a group transitions
// Pending -> Active.
func NewGroupActivatedEvent(g *Group) hostport.Event {
	attrs := groupAttrs(g)
	return hostport.Event{Type: EventTypeGroupActivated, Attributes: attrs}
}

// NewContributionMadeEvent emits the payload for a single member
// contribution landing in a cycle.
func NewContributionMadeEvent(rec *ContributionRecord) hostport.Event {
	return hostport.Event{
		Type: EventTypeContributionMade,
		Attributes: map[string]string{
			"groupId": strconv.FormatUint(rec.GroupID, 10),
			"cycle":   strconv.FormatUint(uint64(rec.Cycle), 10),
			"member":  rec.Member.String(),
			"amount":  rec.Amount.String(),
			"paidAt":  strconv.FormatUint(rec.PaidAt, 10),
		},
	}
}

// NewPayoutExecutedEvent emits the payload when a cycle's payout clears.
func NewPayoutExecutedEvent(rec *PayoutRecord) hostport.Event {
	return hostport.Event{
		Type: EventTypePayoutExecuted,
		Attributes: map[string]string{
			"groupId":   strconv.FormatUint(rec.GroupID, 10),
			"cycle":     strconv.FormatUint(uint64(rec.Cycle), 10),
			"recipient": rec.Recipient.String(),
			"amount":    rec.Amount.String(),
			"paidAt":    strconv.FormatUint(rec.PaidAt, 10),
		},
	}
}

// NewGroupCompletedEvent emits the payload when a group's final cycle
// pays out.
func NewGroupCompletedEvent(g *Group) hostport.Event {
	attrs := groupAttrs(g)
	return hostport.Event{Type: EventTypeGroupCompleted, Attributes: attrs}
}

// NewGroupStatusChangedEvent emits the payload for any status transition not
// otherwise covered by a more specific event (pause, resume, cancel). It is
// also emitted after a parameter update, where from equals the current status.
func NewGroupStatusChangedEvent(g *Group, from GroupStatus) hostport.Event {
	attrs := groupAttrs(g)
	attrs["from"] = from.String()
	return hostport.Event{Type: EventTypeGroupStatusChanged, Attributes: attrs}
}

func groupAttrs(g *Group) map[string]string {
	return map[string]string{
		"groupId":       strconv.FormatUint(g.ID, 10),
		"creator":       g.Creator.String(),
		"status":        g.Status.String(),
		"memberCount":   strconv.FormatUint(uint64(g.MemberCount), 10),
		"maxMembers":    strconv.FormatUint(uint64(g.MaxMembers), 10),
		"currentCycle":  strconv.FormatUint(uint64(g.CurrentCycle), 10),
		"contribAmount": g.ContributionAmount.String(),
	}
}
