package jats

const sampleArticle = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE article PUBLIC "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.2 20190208//EN" "JATS-journalpublishing1.dtd">
<article xmlns:xlink="http://www.w3.org/1999/xlink" article-type="research-article" xml:lang="en">
<front>
<journal-meta>
<journal-title-group><journal-title>Journal of Backfiles</journal-title></journal-title-group>
<publisher><publisher-name>Scholarly Press</publisher-name></publisher>
</journal-meta>
<article-meta>
<article-id pub-id-type="publisher-id">jb-7</article-id>
<article-id pub-id-type="doi">10.1234/jb.2019.07</article-id>
<title-group>
<article-title>Wing venation in island <italic>Drosophila</italic></article-title>
<subtitle>A field study</subtitle>
</title-group>
<contrib-group>
<contrib contrib-type="author">
<contrib-id contrib-id-type="orcid">https://orcid.org/0000-0002-1825-0097</contrib-id>
<name><surname>Byron</surname><given-names>Ada</given-names></name>
<email>ada@example.org</email>
<xref ref-type="aff" rid="aff1"><sup>1</sup></xref>
</contrib>
<contrib contrib-type="author">
<name><surname>Babbage</surname><given-names>Charles</given-names></name>
<xref ref-type="aff" rid="aff2"/>
</contrib>
<contrib contrib-type="editor">
<name><surname>Editor</surname><given-names>Some</given-names></name>
</contrib>
<aff id="aff1"><label>1</label>University of Somewhere, Dept. of Flies</aff>
<aff id="aff2"><institution>Analytical Engine Society</institution></aff>
</contrib-group>
<pub-date pub-type="epub"><day>02</day><month>06</month><year>2019</year></pub-date>
<pub-date pub-type="ppub"><month>07</month><year>2019</year></pub-date>
<volume>12</volume>
<issue>3</issue>
<fpage>101</fpage>
<lpage>118</lpage>
<abstract><title>Abstract</title><p>We measured <bold>wings</bold> &amp; veins.</p></abstract>
<abstract abstract-type="teaser"><p>Short teaser.</p></abstract>
<kwd-group><kwd>genetics</kwd><kwd>Evolution</kwd><kwd>Genetics</kwd></kwd-group>
</article-meta>
</front>
<body>
<sec id="s1"><title>Introduction</title>
<p>Flies have <italic>wings</italic>.<xref ref-type="bibr" rid="b1">1</xref></p>
<p>See <ext-link ext-link-type="uri" xlink:href="https://example.org/data">the data</ext-link> and <ext-link xlink:href="javascript:alert(1)">this</ext-link>.</p>
<sec><title>Background</title><p>Nested <script>alert(1)</script>.</p></sec>
</sec>
<sec><title>Methods</title>
<list list-type="order"><list-item><p>Catch</p></list-item><list-item><p>Measure</p></list-item></list>
<table-wrap id="t1"><caption><title>Table 1</title></caption>
<table><tr><th colspan="2">Wing</th></tr><tr><td rowspan="x">a</td><td>b</td></tr></table>
</table-wrap>
<p>Formula <inline-formula><mml:math xmlns:mml="http://www.w3.org/1998/Math/MathML"><mml:mi>x</mml:mi></mml:math></inline-formula> done.</p>
</sec>
</body>
</article>`
