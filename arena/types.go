package arena

// Channel identifies a remote are.na channel. The slug is the only externally
// significant identifier; Length drives pagination planning. A Channel is
// immutable for the duration of one run and re-fetched on each watch cycle.
type Channel struct {
	// Slug is the channel's URL identifier.
	Slug string `json:"slug"`
	// Title is the channel's display name.
	Title string `json:"title"`
	// Length is the total number of blocks in the channel.
	Length int `json:"length"`
}

// Block is one entry in a channel's content listing. Blocks without image
// data are counted but never downloaded.
type Block struct {
	// ID is stable across time and keys the local filename.
	ID int `json:"id"`
	// Title is optional human text.
	Title string `json:"title"`
	// Image is the downloadable payload, absent for text and link blocks.
	Image *Image `json:"image"`
}

// Image is the downloadable substructure of a Block.
type Image struct {
	ContentType string        `json:"content_type"`
	Original    ImageOriginal `json:"original"`
}

// ImageOriginal holds the full-resolution source URL.
type ImageOriginal struct {
	URL string `json:"url"`
}

// HasImage reports whether the block carries a fetchable image.
func (b *Block) HasImage() bool {
	return b.Image != nil && b.Image.Original.URL != ""
}
