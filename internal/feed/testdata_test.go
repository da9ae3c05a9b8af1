package feed

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example Wire</title>
  <link>https://example.com</link>
  <item>
    <title>Breaking: AI &amp; chips</title>
    <link>https://example.com/a</link>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    <description><![CDATA[<p>Hello <img src="https://example.com/a.jpg"/> world #GoLang</p>]]></description>
    <category>Technology</category>
    <category>Chips</category>
    <dc:creator>Jane Doe</dc:creator>
  </item>
  <item>
    <title>No date</title>
    <link>https://example.com/b</link>
  </item>
  <item>
    <title></title>
    <link>https://example.com/c</link>
    <pubDate>Mon, 02 Jan 2006 16:04:05 GMT</pubDate>
  </item>
  <item>
    <title>No link</title>
    <pubDate>Mon, 02 Jan 2006 17:04:05 GMT</pubDate>
  </item>
  <item>
    <title>Plain entry</title>
    <link>https://example.com/d</link>
    <pubDate>Tue, 03 Jan 2006 15:04:05 GMT</pubDate>
    <description>just text</description>
  </item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Example</title>
  <entry>
    <title>Updated only</title>
    <link href="https://example.org/atom-1"/>
    <updated>2006-01-04T10:00:00Z</updated>
    <author><name>Atom Author</name></author>
    <category term="Sports"/>
    <content type="html">&lt;p&gt;Match report&lt;/p&gt;</content>
  </entry>
</feed>`
