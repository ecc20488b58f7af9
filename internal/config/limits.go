package config

const (
	// MaxTitleLength is the maximum length for article and product titles.
	// Input beyond this is truncated at the boundary, matching the editor's
	// counter behavior, so stored titles never exceed it.
	MaxTitleLength = 80

	// MaxDescriptionLength is the maximum length for the short description
	// shown on cards and in search results.
	MaxDescriptionLength = 160

	// MaxDocumentBlocks caps the block sequence of one document. Adding a
	// block to a full document is a silent no-op, not an error.
	MaxDocumentBlocks = 50

	// MinReadTime and MaxReadTime bound the article read-time field, in minutes.
	MinReadTime = 1
	MaxReadTime = 999

	// MaxProductPrice bounds the product price field, in whole currency units.
	// Zero means the product is free.
	MaxProductPrice = 10000

	// MaxImageUploadBytes is the size limit for thumbnails and content
	// images. Checked locally before any network call.
	MaxImageUploadBytes = 5 << 20

	// MaxProductFileBytes is the size limit for downloadable product files.
	// Validated client-side only; storage enforces its own hard limits.
	MaxProductFileBytes = 50 << 20

	// MaxReviewCommentLength bounds the optional review comment.
	MaxReviewCommentLength = 2000

	// MaxUsernameLength and MaxBioLength bound profile fields.
	MaxUsernameLength = 40
	MaxBioLength      = 500
)
