package sync

import (
	"context"
	"testing"
)

func TestStatusSummarizesRoster(t *testing.T) {
	platform := newFakePlatform(testNow)
	platform.users = append(platform.users, rosterUser("u1", "a@x.com"), rosterUser("u2", "b@x.com"), rosterUser("u3", "c@x.com"))
	platform.invitations = append(platform.invitations,
		invitation("late@x.com", "2024-01-01T00:00:00Z"),
		invitation("soon@x.com", "2099-01-01T00:00:00Z"),
	)
	platform.apps = append(platform.apps, app("app-1", "com.x.y"), app("app-2", "com.x.z"), app("app-3", "com.unmanaged"))
	platform.groups["app-1"] = append(platform.groups["app-1"], internalGroup("g1"))
	platform.groupTesters["g1"] = append(platform.groupTesters["g1"], tester("t1", "a@x.com"), tester("t2", "b@x.com"))

	status, err := Status(context.Background(), platform, []string{"com.x.y", "com.x.z"}, testNow)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status.RosterUsers != 3 || status.PendingInvitations != 2 || status.ExpiredInvitations != 1 {
		t.Fatalf("unexpected roster counts: %+v", status)
	}
	if status.BetaTesters != 2 {
		t.Fatalf("expected 2 beta testers, got %d", status.BetaTesters)
	}
	if len(status.Apps) != 2 {
		t.Fatalf("expected 2 managed apps, got %d", len(status.Apps))
	}
	if status.Apps[0].InternalGroup != "Internal Testers" || status.Apps[0].Testers != 2 {
		t.Fatalf("unexpected first app status: %+v", status.Apps[0])
	}
	if status.Apps[1].InternalGroup != "" || status.Apps[1].Testers != 0 {
		t.Fatalf("expected second app without internal group, got %+v", status.Apps[1])
	}
	if platform.writes != 0 {
		t.Fatalf("expected status to be read-only")
	}
}
