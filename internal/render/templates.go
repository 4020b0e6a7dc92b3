package render

// postPageTemplate renders one self-contained article page. The image
// falls back to an inline SVG placeholder carrying the category label so
// a missing image never breaks the layout.
const postPageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    body{font-family:system-ui,-apple-system,"Segoe UI",Roboto,sans-serif;margin:0;background:#fff;color:#111}
    header{padding:18px 16px;border-bottom:1px solid #eee}
    a{color:#0a58ff}
    main{max-width:720px;margin:0 auto;padding:16px}
    h1{font-size:22px;line-height:1.25;margin:0 0 10px}
    .meta{color:#666;font-size:13px;margin-bottom:18px}
    .hero{width:100%;border-radius:14px;display:block}
    .box{border:1px solid #eee;border-radius:14px;padding:14px;margin-top:16px}
    .muted{color:#666}
  </style>
</head>
<body>
  <header>
    <a href="{{.IndexHref}}">&larr; back to index</a>
  </header>
  <main>
    <h1>{{.Title}}</h1>
    <div class="meta">{{.Published}} &middot; {{.SourceName}} &middot; {{.Category}}</div>
    {{if .Image}}<img class="hero" src="{{.Image}}" alt="" loading="lazy" />{{else}}<svg class="hero" viewBox="0 0 640 240" role="img" xmlns="http://www.w3.org/2000/svg"><rect width="640" height="240" rx="14" fill="#e8ecf3"/><text x="320" y="128" text-anchor="middle" font-size="28" fill="#7a8699" font-family="sans-serif">{{.Category}}</text></svg>{{end}}
    {{if .Summary}}<p>{{.Summary}}</p>{{end}}
    <div class="box">
      <p class="muted">This page was generated automatically from a syndication feed.</p>
      <p><a href="{{.URL}}" target="_blank" rel="noopener">Read the original article</a></p>
    </div>
  </main>
</body>
</html>
`

// indexPageTemplate lists every retained post with a link to its page.
const indexPageTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1" />
  <title>kiji</title>
  <style>
    body{font-family:system-ui,-apple-system,"Segoe UI",Roboto,sans-serif;margin:0;background:#fff;color:#111}
    header{padding:18px 16px;border-bottom:1px solid #eee}
    main{max-width:720px;margin:0 auto;padding:16px}
    .updated{color:#666;font-size:13px}
    ul{list-style:none;padding:0;margin:0}
    li{border-bottom:1px solid #f0f0f0;padding:12px 0}
    li a{color:#111;text-decoration:none;font-weight:600}
    li a:hover{color:#0a58ff}
    .meta{color:#666;font-size:13px;margin-top:4px}
  </style>
</head>
<body>
  <header>
    <strong>kiji</strong>
    <div class="updated">updated {{.UpdatedAt}}</div>
  </header>
  <main>
    <ul>
      {{range .Posts}}<li>
        <a href="{{.PagePath}}">{{.Title}}</a>
        <div class="meta">{{.Published}} &middot; {{.SourceName}} &middot; {{.Category}}</div>
      </li>
      {{end}}
    </ul>
  </main>
</body>
</html>
`
