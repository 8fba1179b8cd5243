package report

import "encoding/xml"

type bcfReport struct {
	XMLName xml.Name   `xml:"BCFReport"`
	Project bcfProject `xml:"Project"`
	Topics  []bcfTopic `xml:"Topics>Topic"`
}

type bcfProject struct {
	Name       string `xml:"Name"`
	ExportDate string `xml:"ExportDate"`
}

type bcfTopic struct {
	GUID      string       `xml:"guid,attr"`
	Title     string       `xml:"Title"`
	ElementID string       `xml:"ElementID"`
	Snapshots []string     `xml:"Snapshot"`
	Comments  []bcfComment `xml:"Comments>Comment"`
}

type bcfComment struct {
	ID     string `xml:"id,attr"`
	Author string `xml:"Author"`
	Date   string `xml:"Date"`
	Text   string `xml:"Text"`
}
