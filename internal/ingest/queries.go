package ingest

// GraphQL query texts and their typed response shapes. Every optional
// level of the remote response is a pointer so that a missing connection
// is detected at the extraction boundary instead of optional-chaining
// through untyped data.

const repositoriesQuery = `
query repositories($org: String!, $cursor: String) {
  repositoryOwner(login: $org) {
    login
    repositories(first: 100, after: $cursor) {
      nodes {
        name
        url
        isArchived
      }
      pageInfo {
        hasNextPage
        endCursor
      }
    }
  }
}`

const usersQuery = `
query users($org: String!, $cursor: String) {
  organization(login: $org) {
    membersWithRole(first: 100, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      nodes {
        avatarUrl
        bio
        email
        login
        name
      }
    }
  }
}`

const teamsQuery = `
query teams($org: String!, $cursor: String) {
  organization(login: $org) {
    teams(first: 100, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      nodes {
        slug
        combinedSlug
        name
        description
        avatarUrl
        parentTeam { slug }
        members(first: 100, membership: IMMEDIATE) {
          pageInfo { hasNextPage endCursor }
          nodes { login }
        }
      }
    }
  }
}`

const organizationsQuery = `
query organizations($cursor: String) {
  viewer {
    organizations(first: 100, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      nodes { url }
    }
  }
}`

const teamMembersQuery = `
query teamMembers($org: String!, $teamSlug: String!, $cursor: String) {
  organization(login: $org) {
    team(slug: $teamSlug) {
      members(first: 100, after: $cursor, membership: IMMEDIATE) {
        pageInfo { hasNextPage endCursor }
        nodes { login }
      }
    }
  }
}`

type repositoryNode struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	IsArchived bool   `json:"isArchived"`
}

type userNode struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

type teamMemberNode struct {
	Login string `json:"login"`
}

type organizationNode struct {
	URL string `json:"url"`
}

type teamNode struct {
	Slug         string `json:"slug"`
	CombinedSlug string `json:"combinedSlug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	AvatarURL    string `json:"avatarUrl"`
	ParentTeam   *struct {
		Slug string `json:"slug"`
	} `json:"parentTeam"`
	Members *Connection[teamMemberNode] `json:"members"`
}

type repositoriesResponse struct {
	RepositoryOwner *struct {
		Login        string                      `json:"login"`
		Repositories *Connection[repositoryNode] `json:"repositories"`
	} `json:"repositoryOwner"`
}

type usersResponse struct {
	Organization *struct {
		MembersWithRole *Connection[userNode] `json:"membersWithRole"`
	} `json:"organization"`
}

type teamsResponse struct {
	Organization *struct {
		Teams *Connection[teamNode] `json:"teams"`
	} `json:"organization"`
}

type organizationsResponse struct {
	Viewer *struct {
		Organizations *Connection[organizationNode] `json:"organizations"`
	} `json:"viewer"`
}

type teamMembersResponse struct {
	Organization *struct {
		Team *struct {
			Members *Connection[teamMemberNode] `json:"members"`
		} `json:"team"`
	} `json:"organization"`
}
