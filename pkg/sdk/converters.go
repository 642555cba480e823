package flagsearch

import (
	"strconv"

	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/request"
	"github.com/kailas-cloud/flagsearch/internal/domain/search/result"
	featureuc "github.com/kailas-cloud/flagsearch/internal/usecase/feature"
)

func fromInternalRecord(r *domfeature.Record) Feature {
	tags := make([]Tag, len(r.Tags()))
	for i, t := range r.Tags() {
		tags[i] = Tag{Type: t.Type(), Value: t.Value()}
	}
	names := r.EnvironmentNames()
	envs := make([]Environment, len(names))
	for i, name := range names {
		st, _ := r.Environment(name)
		envs[i] = Environment{Name: name, Enabled: st.Enabled(), LastSeenAt: st.LastSeenAt()}
	}
	return Feature{
		Name:         r.Name(),
		Type:         r.Type(),
		Project:      r.Project(),
		Description:  r.Description(),
		CreatedAt:    r.CreatedAt(),
		ArchivedAt:   r.ArchivedAt(),
		Tags:         tags,
		Environments: envs,
	}
}

func toInternalDraft(in *FeatureInput) (featureuc.Draft, error) {
	var tags []domfeature.Tag
	for _, t := range in.Tags {
		tag, err := domfeature.NewTag(t.Type, t.Value)
		if err != nil {
			return featureuc.Draft{}, err //nolint:wrapcheck // wrapped by callers
		}
		tags = append(tags, tag)
	}
	var envs map[string]domfeature.EnvironmentStatus
	if len(in.Environments) > 0 {
		envs = make(map[string]domfeature.EnvironmentStatus, len(in.Environments))
		for name, st := range in.Environments {
			envs[name] = domfeature.NewEnvironmentStatus(st.Enabled, st.LastSeenAt)
		}
	}
	return featureuc.Draft{
		Name:         in.Name,
		Type:         in.Type,
		Project:      in.Project,
		Description:  in.Description,
		CreatedAt:    in.CreatedAt,
		Archived:     in.Archived,
		Tags:         tags,
		Environments: envs,
	}, nil
}

func toInternalParams(q *Query) request.Params {
	p := request.Params{
		Query:     q.Text,
		ProjectID: q.Project,
		Types:     q.Types,
		Tags:      q.Tags,
		Statuses:  q.Statuses,
		SortBy:    string(q.SortBy),
		SortOrder: string(q.Order),
		Cursor:    q.Cursor,
	}
	if q.Limit > 0 {
		p.Limit = strconv.Itoa(q.Limit)
	}
	if q.Archived {
		p.Archived = "true"
	}
	return p
}

func fromInternalPage(p *result.Page) Page {
	features := make([]Feature, len(p.Features()))
	for i := range p.Features() {
		features[i] = fromInternalRecord(&p.Features()[i])
	}
	return Page{Features: features, Total: p.Total(), NextCursor: p.NextCursor()}
}
