package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

const relsNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// ooxmlPackage is an opened Office Open XML zip (pptx, docx).
type ooxmlPackage struct {
	reader *zip.ReadCloser
	files  map[string]*zip.File
}

func openPackage(p string) (*ooxmlPackage, error) {
	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}
	return &ooxmlPackage{reader: r, files: files}, nil
}

func (p *ooxmlPackage) Close() error {
	return p.reader.Close()
}

func (p *ooxmlPackage) has(name string) bool {
	_, ok := p.files[name]
	return ok
}

func (p *ooxmlPackage) read(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("%s not found in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (p *ooxmlPackage) decoder(name string) (*xml.Decoder, func() error, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, nil, fmt.Errorf("%s not found in archive", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	return xml.NewDecoder(rc), rc.Close, nil
}

type relationships struct {
	Items []struct {
		ID         string `xml:"Id,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// rels resolves the relationship part of owner (e.g. ppt/slides/slide1.xml)
// to a map of relationship id -> archive path. Missing parts yield an empty map.
func (p *ooxmlPackage) rels(owner string) (map[string]string, error) {
	relsPath := path.Join(path.Dir(owner), "_rels", path.Base(owner)+".rels")
	out := make(map[string]string)
	if !p.has(relsPath) {
		return out, nil
	}

	data, err := p.read(relsPath)
	if err != nil {
		return nil, err
	}
	var rs relationships
	if err := xml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", relsPath, err)
	}

	for _, r := range rs.Items {
		if strings.EqualFold(r.TargetMode, "External") {
			continue
		}
		if strings.HasPrefix(r.Target, "/") {
			out[r.ID] = strings.TrimPrefix(r.Target, "/")
		} else {
			out[r.ID] = path.Join(path.Dir(owner), r.Target)
		}
	}
	return out, nil
}

// relAttr returns the value of a relationships-namespaced attribute such as r:id or r:embed.
func relAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local && a.Name.Space == relsNamespace {
			return a.Value
		}
	}
	return ""
}
