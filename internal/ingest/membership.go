package ingest

import (
	"log"
	"slices"

	"github.com/kurihiro0119/github-org-ingest/internal/domain"
)

// MergeMembership merges team membership into per-user records and
// returns the canonical user list.
//
// Users are indexed by login, first-seen instance wins for duplicates.
// Each user's MemberOf is rebuilt from the team member lists (never
// trusted from input), with set semantics so merging is idempotent.
// Logins a team references but the user query never returned (external
// collaborators) are skipped. Teams are not mutated.
func MergeMembership(users []*domain.User, teams []*domain.Team) []*domain.User {
	byLogin := make(map[string]*domain.User, len(users))
	canonical := make([]*domain.User, 0, len(users))

	for _, user := range users {
		if _, ok := byLogin[user.Login]; ok {
			log.Printf("Warning: duplicate user login %q, keeping first-seen record", user.Login)
			continue
		}
		user.MemberOf = nil
		byLogin[user.Login] = user
		canonical = append(canonical, user)
	}

	for _, team := range teams {
		for _, login := range team.Members {
			user, ok := byLogin[login]
			if !ok {
				log.Printf("Warning: team %s references unknown user %q, skipping", team.Slug, login)
				continue
			}
			if !slices.Contains(user.MemberOf, team.Slug) {
				user.MemberOf = append(user.MemberOf, team.Slug)
			}
		}
	}

	return canonical
}
