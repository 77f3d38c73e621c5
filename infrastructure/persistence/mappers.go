package persistence

import (
	"github.com/talentwatch/talentwatch/domain/roster"
	"github.com/talentwatch/talentwatch/domain/speaker"
)

// PersonMapper maps between roster.Person and PersonModel.
type PersonMapper struct{}

// ToDomain converts a PersonModel to a roster.Person.
func (m PersonMapper) ToDomain(e PersonModel) roster.Person {
	return roster.ReconstructPerson(
		e.ID,
		e.ProfileURL,
		e.Name,
		e.NormName,
		e.FirstName,
		e.LastName,
		e.Headline,
		e.Location,
	)
}

// ToModel converts a roster.Person to a PersonModel.
func (m PersonMapper) ToModel(p roster.Person) PersonModel {
	return PersonModel{
		ID:         p.ID(),
		ProfileURL: p.ProfileURL(),
		Name:       p.Name(),
		NormName:   p.NormName(),
		FirstName:  p.FirstName(),
		LastName:   p.LastName(),
		Headline:   p.Headline(),
		Location:   p.Location(),
	}
}

// CompanyMapper maps between roster.Company and CompanyModel.
type CompanyMapper struct{}

// ToDomain converts a CompanyModel to a roster.Company.
func (m CompanyMapper) ToDomain(e CompanyModel) roster.Company {
	return roster.ReconstructCompany(e.ID, e.ProfileURL, e.Name)
}

// ToModel converts a roster.Company to a CompanyModel.
func (m CompanyMapper) ToModel(c roster.Company) CompanyModel {
	return CompanyModel{
		ID:         c.ID(),
		ProfileURL: c.ProfileURL(),
		Name:       c.Name(),
	}
}

// RelationshipMapper maps between roster.Relationship and RelationshipModel.
type RelationshipMapper struct{}

// ToDomain converts a RelationshipModel to a roster.Relationship.
func (m RelationshipMapper) ToDomain(e RelationshipModel) roster.Relationship {
	return roster.ReconstructRelationship(
		e.ID,
		e.PersonURL,
		e.CompanyURL,
		roster.EmploymentStatus(e.StatusCode),
		e.UpdateCount,
		e.LastUpdated,
	)
}

// ToModel converts a roster.Relationship to a RelationshipModel.
func (m RelationshipMapper) ToModel(r roster.Relationship) RelationshipModel {
	return RelationshipModel{
		ID:          r.ID(),
		PersonURL:   r.PersonURL(),
		CompanyURL:  r.CompanyURL(),
		StatusCode:  int(r.Status()),
		UpdateCount: r.UpdateCount(),
		LastUpdated: r.LastUpdated(),
	}
}

// SpeakerMapper maps between speaker.Speaker and SpeakerModel.
type SpeakerMapper struct{}

// ToDomain converts a SpeakerModel to a speaker.Speaker.
func (m SpeakerMapper) ToDomain(e SpeakerModel) speaker.Speaker {
	return speaker.ReconstructSpeaker(e.Name, e.NormName, e.WebsiteURL, e.ProfileURL)
}

// ToModel converts a speaker.Speaker to a SpeakerModel.
func (m SpeakerMapper) ToModel(s speaker.Speaker) SpeakerModel {
	return SpeakerModel{
		Name:       s.Name(),
		NormName:   s.NormName(),
		WebsiteURL: s.WebsiteURL(),
		ProfileURL: s.ProfileURL(),
	}
}

// TalkMapper maps between speaker.Talk and TalkModel.
type TalkMapper struct{}

// ToDomain converts a TalkModel to a speaker.Talk.
func (m TalkMapper) ToDomain(e TalkModel) speaker.Talk {
	return speaker.NewTalk(e.SpeakerName, e.ConferenceName, e.ConferenceYear, e.Title, e.Company)
}

// ToModel converts a speaker.Talk to a TalkModel.
func (m TalkMapper) ToModel(t speaker.Talk) TalkModel {
	return TalkModel{
		SpeakerName:    t.SpeakerName(),
		ConferenceName: t.Conference(),
		ConferenceYear: t.Year(),
		Title:          t.Title(),
		Company:        t.Company(),
	}
}
