package event

import "strings"

// MediaReferences returns the image and video attachments declared on the
// message, classified by MIME type. Other file types are ignored. A message
// without files yields an empty slice.
func (m NewMessage) MediaReferences() []MediaReference {
	refs := make([]MediaReference, 0, len(m.Files))
	for _, f := range m.Files {
		var kind MediaKind
		switch {
		case strings.HasPrefix(f.Mimetype, "image/"):
			kind = KindImage
		case strings.HasPrefix(f.Mimetype, "video/"):
			kind = KindVideo
		default:
			continue
		}
		refs = append(refs, MediaReference{
			Kind:       kind,
			ID:         f.ID,
			Name:       f.Name,
			Permalink:  f.Permalink,
			URLPrivate: f.URLPrivate,
			Size:       f.Size,
		})
	}
	return refs
}

// LinkURLs walks the rich-text block tree and collects the URLs of link
// elements. A message without blocks yields an empty slice.
func (m NewMessage) LinkURLs() []string {
	urls := make([]string, 0)
	for _, blk := range m.Blocks {
		for _, el := range blk.Elements {
			for _, sub := range el.Elements {
				if sub.Type == "link" && sub.URL != "" {
					urls = append(urls, sub.URL)
				}
			}
		}
	}
	return urls
}

// PreviewURLs returns one checkable URL per link-preview attachment,
// preferring thumb_url and falling back to image_url. Attachments with
// neither are skipped.
func (m EditedMessage) PreviewURLs() []string {
	urls := make([]string, 0, len(m.Previews))
	for _, att := range m.Previews {
		url := att.ThumbURL
		if url == "" {
			url = att.ImageURL
		}
		if url == "" {
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
