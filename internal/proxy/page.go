package proxy

// PageContentType is the only content type the proxy page serves; it
// arrives as the fixed contentType query parameter.
const PageContentType = "rawhtml"

// PageHTML is the static proxy page served at the proxy origin for
// real-browser deployments. It mirrors the Channel state machine:
// attach the listener, announce readiness to the parent, then honor
// ui-html-content from the parent window only, recreating the inner
// iframe per payload with allow-scripts forced into the sandbox set.
const PageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>sandbox proxy</title>
<style>html,body{margin:0;height:100%}iframe{border:0;width:100%;height:100%}</style>
</head>
<body>
<script>
(function () {
  "use strict";

  var inner = null;

  function serve(html, sandbox) {
    var tokens = (sandbox || "").split(/\s+/).filter(Boolean);
    if (tokens.indexOf("allow-scripts") === -1) {
      tokens.push("allow-scripts");
    }
    if (inner) {
      inner.remove();
    }
    inner = document.createElement("iframe");
    inner.setAttribute("sandbox", tokens.join(" "));
    inner.srcdoc = html;
    document.body.appendChild(inner);
  }

  window.addEventListener("message", function (event) {
    if (event.source !== window.parent) {
      return;
    }
    var data = event.data || {};
    if (data.type !== "ui-html-content" || !data.payload) {
      return;
    }
    serve(data.payload.html, data.payload.sandbox);
  });

  window.parent.postMessage({ type: "ui-proxy-iframe-ready" }, "*");
})();
</script>
</body>
</html>
`
