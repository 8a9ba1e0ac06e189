package packager

// Entry names inside the archive, in archive order.
const (
	IndexHTMLName = "index.html"
	IndexJSName   = "index.js"
	MetadataName  = "metadata.json"
	AppSourceName = "app.html"
)

// ArchiveName is the filename the archive is saved under.
const ArchiveName = "redactor-files-to-upload.zip"

// IndexHTML is the markup entry page of the static deployment.
const IndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>REDACTOR</title>
  <style>
    body { font-family: 'Inter', sans-serif; background-color: #050505; color: #e5e5e5; margin: 0; }
  </style>
</head>
<body>
  <div id="root"></div>
  <script src="./index.js"></script>
</body>
</html>
`

// IndexJS bootstraps the static deployment. app.html is the server-side
// template of the web shell, so it is shown as source; the live shell runs
// under "redactor serve".
const IndexJS = `(function () {
  var root = document.getElementById('root');
  if (!root) return;
  var note = document.createElement('p');
  note.textContent = 'app.html is the REDACTOR web shell template. Run "redactor serve" to use it.';
  var pre = document.createElement('pre');
  pre.style.whiteSpace = 'pre-wrap';
  root.appendChild(note);
  root.appendChild(pre);
  fetch('./app.html')
    .then(function (res) {
      if (!res.ok) throw new Error('HTTP ' + res.status);
      return res.text();
    })
    .then(function (src) { pre.textContent = src; })
    .catch(function (err) {
      pre.textContent = 'Failed to load app.html: ' + err.message;
    });
})();
`

// MetadataJSON describes the deployment.
const MetadataJSON = `{
  "name": "REDACTOR",
  "description": "Secure text redaction tool.",
  "requestFramePermissions": []
}
`
