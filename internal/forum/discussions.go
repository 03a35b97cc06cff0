package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
)

// DiscussionRef identifies a discussion the persona may reply to.
type DiscussionRef struct {
	ID    int
	Title string
}

// Discussion is a discussion title plus its posts, oldest first, already
// converted from the forum's HTML to markdown.
type Discussion struct {
	ID    int
	Title string
	Posts []string
}

// Created is the forum's answer to a successful write.
type Created struct {
	ID int
}

// untitled replaces a missing discussion title.
const untitled = "No title"

// resourceID accepts JSON:API ids sent as strings or bare numbers. Anything
// else decodes to the empty id.
type resourceID string

func (id *resourceID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = resourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = resourceID(n.String())
		return nil
	}
	*id = ""
	return nil
}

func (id resourceID) Int() (int, bool) {
	if id == "" {
		return 0, false
	}
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0, false
	}
	return n, true
}

type discussionList struct {
	Data *[]discussionResource `json:"data"`
}

type discussionResource struct {
	ID         resourceID `json:"id"`
	Attributes struct {
		Title    *string `json:"title"`
		IsLocked bool    `json:"isLocked"`
		IsSticky bool    `json:"isSticky"`
		IsHidden bool    `json:"isHidden"`
		CanReply *bool   `json:"canReply"`
	} `json:"attributes"`
	Relationships struct {
		LastPostedUser struct {
			Data *struct {
				ID resourceID `json:"id"`
			} `json:"data"`
		} `json:"lastPostedUser"`
	} `json:"relationships"`
}

// eligibleFor reports whether personaID may reply here without talking to
// itself or posting into a closed thread.
func (r discussionResource) eligibleFor(personaID int) bool {
	a := r.Attributes
	if a.IsLocked || a.IsSticky || a.IsHidden {
		return false
	}
	if a.CanReply == nil || !*a.CanReply {
		return false
	}
	if last := r.Relationships.LastPostedUser.Data; last != nil {
		if id, ok := last.ID.Int(); ok && id == personaID {
			return false
		}
	}
	return true
}

type discussionDocument struct {
	Data *struct {
		Attributes struct {
			Title *string `json:"title"`
		} `json:"attributes"`
	} `json:"data"`
	Included *[]includedResource `json:"included"`
}

type includedResource struct {
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

type postAttributes struct {
	Number      int    `json:"number"`
	ContentHTML string `json:"contentHtml"`
}

type createdDocument struct {
	Data *struct {
		ID resourceID `json:"id"`
	} `json:"data"`
}

type resourceLink struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type newDiscussionRequest struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"attributes"`
		Relationships struct {
			Tags struct {
				Data []resourceLink `json:"data"`
			} `json:"tags"`
		} `json:"relationships"`
	} `json:"data"`
}

type newPostRequest struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Content string `json:"content"`
		} `json:"attributes"`
		Relationships struct {
			Discussion struct {
				Data resourceLink `json:"data"`
			} `json:"discussion"`
		} `json:"relationships"`
	} `json:"data"`
}

// ListOpenDiscussions returns the discussions personaID could reply to:
// not locked, not sticky, not hidden, replyable, and not last posted in by
// the persona itself. Items without a numeric id or a title are dropped.
// An empty result is not an error.
func (c *Client) ListOpenDiscussions(ctx context.Context, personaID int) (_ []DiscussionRef, err error) {
	ctx, span := c.startSpan(ctx, "ListOpenDiscussions")
	span.SetAttributes(attribute.Int("persona.id", personaID))
	defer func() { endSpan(span, err) }()

	const op = "list discussions"
	var doc discussionList
	if err := c.do(ctx, op, http.MethodGet, "/discussions", c.personaAuth(personaID), nil, &doc); err != nil {
		return nil, err
	}
	if doc.Data == nil {
		return nil, &MalformedResponseError{Op: op, Detail: "missing data array"}
	}

	var refs []DiscussionRef
	for _, r := range *doc.Data {
		id, ok := r.ID.Int()
		if !ok || r.Attributes.Title == nil {
			continue
		}
		if !r.eligibleFor(personaID) {
			continue
		}
		refs = append(refs, DiscussionRef{ID: id, Title: *r.Attributes.Title})
	}
	span.SetAttributes(attribute.Int("discussions.eligible", len(refs)))
	return refs, nil
}

// PickRandomOpenDiscussion picks uniformly among ListOpenDiscussions. It
// returns (nil, nil) when nothing is eligible.
func (c *Client) PickRandomOpenDiscussion(ctx context.Context, personaID int) (*DiscussionRef, error) {
	refs, err := c.ListOpenDiscussions(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}
	ref := refs[c.pick(len(refs))]
	return &ref, nil
}

// FetchDiscussion loads a discussion and its included posts ordered by post
// number, each converted to markdown.
func (c *Client) FetchDiscussion(ctx context.Context, discussionID int) (_ *Discussion, err error) {
	ctx, span := c.startSpan(ctx, "FetchDiscussion")
	span.SetAttributes(attribute.Int("discussion.id", discussionID))
	defer func() { endSpan(span, err) }()

	const op = "fetch discussion"
	var doc discussionDocument
	path := fmt.Sprintf("/discussions/%d", discussionID)
	if err := c.do(ctx, op, http.MethodGet, path, c.keyAuth(), nil, &doc); err != nil {
		return nil, err
	}
	if doc.Included == nil {
		return nil, &MalformedResponseError{Op: op, Detail: "missing included array"}
	}

	title := untitled
	if doc.Data != nil && doc.Data.Attributes.Title != nil {
		title = *doc.Data.Attributes.Title
	}

	var posts []postAttributes
	for _, inc := range *doc.Included {
		if inc.Type != "posts" {
			continue
		}
		var p postAttributes
		if len(inc.Attributes) > 0 {
			if err := json.Unmarshal(inc.Attributes, &p); err != nil {
				return nil, &MalformedResponseError{Op: op, Detail: "invalid post attributes", Err: err}
			}
		}
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Number < posts[j].Number })

	d := &Discussion{ID: discussionID, Title: title, Posts: make([]string, 0, len(posts))}
	for _, p := range posts {
		d.Posts = append(d.Posts, ToMarkdown(p.ContentHTML))
	}
	span.SetAttributes(attribute.Int("discussion.posts", len(d.Posts)))
	return d, nil
}

// CreateDiscussion opens a new discussion authored by personaID under the
// client's tag.
func (c *Client) CreateDiscussion(ctx context.Context, personaID int, title, content string) (_ *Created, err error) {
	ctx, span := c.startSpan(ctx, "CreateDiscussion")
	span.SetAttributes(attribute.Int("persona.id", personaID))
	defer func() { endSpan(span, err) }()

	var body newDiscussionRequest
	body.Data.Type = "discussions"
	body.Data.Attributes.Title = title
	body.Data.Attributes.Content = content
	body.Data.Relationships.Tags.Data = []resourceLink{{Type: "tags", ID: c.tagID}}

	return c.create(ctx, "create discussion", "/discussions", personaID, body)
}

// WritePost appends a post authored by personaID to a discussion.
func (c *Client) WritePost(ctx context.Context, personaID, discussionID int, content string) (_ *Created, err error) {
	ctx, span := c.startSpan(ctx, "WritePost")
	span.SetAttributes(
		attribute.Int("persona.id", personaID),
		attribute.Int("discussion.id", discussionID),
	)
	defer func() { endSpan(span, err) }()

	var body newPostRequest
	body.Data.Type = "posts"
	body.Data.Attributes.Content = content
	body.Data.Relationships.Discussion.Data = resourceLink{Type: "discussions", ID: strconv.Itoa(discussionID)}

	return c.create(ctx, "write post", "/posts", personaID, body)
}

// create posts a JSON:API document and reads back the created id. A 2xx
// answer without a usable id still counts as success.
func (c *Client) create(ctx context.Context, op, path string, personaID int, body any) (*Created, error) {
	var doc createdDocument
	if err := c.do(ctx, op, http.MethodPost, path, c.personaAuth(personaID), body, &doc); err != nil {
		return nil, err
	}
	created := &Created{}
	if doc.Data != nil {
		if id, ok := doc.Data.ID.Int(); ok {
			created.ID = id
		}
	}
	return created, nil
}
