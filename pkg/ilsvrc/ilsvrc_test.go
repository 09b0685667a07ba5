package ilsvrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleXML = `<annotation>
	<folder>n02419796</folder>
	<filename>n02419796_1001</filename>
	<source><database>ILSVRC_2013</database></source>
	<size>
		<width>500</width>
		<height>375</height>
	</size>
	<object>
		<name>n02419796</name>
		<bndbox>
			<xmin>10</xmin>
			<xmax>110</xmax>
			<ymin>20</ymin>
			<ymax>220</ymax>
		</bndbox>
	</object>
	<object>
		<name>n00007846</name>
		<bndbox>
			<xmin> 1 </xmin>
			<xmax>2</xmax>
			<ymin>3</ymin>
			<ymax>4</ymax>
		</bndbox>
	</object>
</annotation>`

func TestParse(t *testing.T) {
	a, err := Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)
	require.Equal(t, "n02419796", a.Folder)
	require.Equal(t, "n02419796_1001", a.Filename)
	require.Equal(t, 500, a.Size.Width)
	require.Equal(t, 375, a.Size.Height)
	require.Len(t, a.Objects, 2)
	require.Equal(t, BndBox{XMin: 10, YMin: 20, XMax: 110, YMax: 220}, a.Objects[0].BndBox)
	require.Equal(t, 1, a.Objects[1].BndBox.XMin)
	require.Equal(t, "n02419796/n02419796_1001.JPEG", a.ImageFileName())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(`<annotation><filename>x</filename><size><width>abc</width></size></annotation>`))
	require.Error(t, err)

	_, err = Parse(strings.NewReader(`<annotation></annotation>`))
	require.Error(t, err)

	_, err = Parse(strings.NewReader(`<annotation>`))
	require.Error(t, err)
}

func TestListAnnotationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.xml", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sampleXML), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xml"), 0755))
	files, err := ListAnnotationFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.xml"), filepath.Join(dir, "b.xml")}, files)

	_, err = ListAnnotationFiles(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
