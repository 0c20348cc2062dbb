package db

import (
	"regexp"

	"github.com/arzan03/PalavraDoDia/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// entryFilterBSON translates f into a query document. The search term is
// escaped so it matches as a literal substring.
func entryFilterBSON(f models.EntryFilter) bson.M {
	filter := bson.M{}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Language != "" {
		filter["language"] = f.Language
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := make(bson.A, 0, len(models.SearchFields()))
		for _, field := range models.SearchFields() {
			or = append(or, bson.M{field: pattern})
		}
		filter["$or"] = or
	}

	if f.From != nil || f.To != nil {
		date := bson.M{}
		if f.From != nil {
			date["$gte"] = *f.From
		}
		if f.To != nil {
			date["$lte"] = *f.To
		}
		filter["publishDate"] = date
	}

	return filter
}

var entrySort = bson.D{{Key: "publishDate", Value: -1}, {Key: "_id", Value: 1}}

// patchSet builds the $set document for the fields present in p.
func patchSet(p models.EntryPatch) bson.M {
	set := bson.M{
		"updatedAt": p.UpdatedAt,
		"updatedBy": p.UpdatedBy,
	}
	if p.Word != nil {
		set["word"] = *p.Word
	}
	if p.Quote != nil {
		set["quote"] = *p.Quote
	}
	if p.Reference != nil {
		set["reference"] = *p.Reference
	}
	if p.Reflection != nil {
		set["reflection"] = *p.Reflection
	}
	if p.PublishDate != nil {
		set["publishDate"] = p.PublishDate.Time
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Language != nil {
		set["language"] = *p.Language
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if p.Image != nil {
		set["images."+p.Image.Kind] = p.Image.URL
	}
	return set
}
