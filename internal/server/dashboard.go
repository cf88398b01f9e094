package server

import (
	"net/http"
)

// handleDashboard serves the single-page dashboard at /.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// The root pattern catches everything unmatched; only serve the page itself
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Stock TTM Dashboard</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem; color: #111827; }
  h1 { text-align: center; }
  .controls { display: flex; flex-wrap: wrap; gap: 0.75rem; align-items: flex-end; justify-content: center; margin-bottom: 1.5rem; }
  .controls label { display: block; font-size: 0.75rem; color: #6b7280; margin-bottom: 0.2rem; }
  .controls input, .controls select { padding: 0.4rem; border: 1px solid #d1d5db; border-radius: 4px; width: 9rem; }
  .controls button { padding: 0.5rem 1.25rem; background: #2563eb; color: white; border: none; border-radius: 4px; cursor: pointer; }
  .controls button:disabled { background: #9ca3af; }
  #status { text-align: center; min-height: 1.5rem; }
  #status.error { color: #dc2626; }
  .panes { display: flex; flex-wrap: wrap; gap: 1.5rem; justify-content: center; align-items: flex-start; }
  table { border-collapse: collapse; font-size: 0.85rem; }
  th, td { border: 1px solid #e5e7eb; padding: 0.3rem 0.6rem; text-align: left; }
  th { background: #f3f4f6; }
  td.num { text-align: right; font-variant-numeric: tabular-nums; }
  #chart img { max-width: 900px; width: 100%; }
</style>
</head>
<body>
<h1>Stock TTM Dashboard</h1>
<div class="controls">
  <div><label for="ticker">Ticker</label><input id="ticker" value="GOOG"></div>
  <div><label for="method">Valuation Method</label>
    <select id="method">
      <option value="summary">summary</option>
      <option value="relative">relative</option>
      <option value="dcf">dcf</option>
      <option value="gordon">gordon</option>
    </select>
  </div>
  <div><label for="years">DCF Years</label><input id="years" type="number" value="5" min="1"></div>
  <div><label for="growth">Projection Growth</label><input id="growth" type="number" value="0.03" step="0.01"></div>
  <div><label for="discount">Discount Rate</label><input id="discount" type="number" value="0.10" step="0.01"></div>
  <div><label for="terminal_growth">Terminal Growth</label><input id="terminal_growth" type="number" value="0.02" step="0.01"></div>
  <div><label for="terminal_multiple">Terminal Multiple</label><input id="terminal_multiple" type="number" placeholder="optional"></div>
  <div><button id="fetch">Fetch Data</button></div>
</div>
<div id="status"></div>
<div class="panes">
  <div><h3>Metrics</h3><table id="metrics"></table></div>
  <div id="chart"></div>
  <div><h3>Valuation</h3><table id="valuation"></table></div>
</div>
<script>
const fmt = (v) => {
  if (v === null || v === undefined) return "n/a";
  if (typeof v === "number") {
    if (Math.abs(v) >= 1e6) return v.toLocaleString("en-US", {maximumFractionDigits: 0});
    return v.toLocaleString("en-US", {maximumFractionDigits: 4});
  }
  return String(v);
};

function renderTable(el, record, keyHeader) {
  el.innerHTML = "";
  const head = el.insertRow();
  head.innerHTML = "<th>" + keyHeader + "</th><th>Value</th>";
  Object.keys(record).sort().forEach((k) => {
    const row = el.insertRow();
    const name = row.insertCell();
    name.textContent = k;
    const val = row.insertCell();
    val.textContent = fmt(record[k]);
    val.className = "num";
  });
}

async function fetchJSON(url) {
  const resp = await fetch(url);
  const body = await resp.json();
  if (!resp.ok) throw new Error(body.error || resp.statusText);
  return body;
}

async function update() {
  const ticker = document.getElementById("ticker").value.trim().toUpperCase();
  if (!ticker) return;
  const button = document.getElementById("fetch");
  const status = document.getElementById("status");
  button.disabled = true;
  status.className = "";
  status.textContent = "Fetching data for " + ticker + "...";
  document.getElementById("metrics").innerHTML = "";
  document.getElementById("valuation").innerHTML = "";
  document.getElementById("chart").innerHTML = "";

  try {
    const method = document.getElementById("method").value;
    let valuationURL = "/api/tickers/" + ticker + "/valuation?method=" + method;
    if (method === "dcf") {
      for (const p of ["years", "growth", "discount", "terminal_growth", "terminal_multiple"]) {
        const v = document.getElementById(p).value;
        if (v !== "") valuationURL += "&" + p + "=" + encodeURIComponent(v);
      }
    }
    const [metrics, valuation] = await Promise.all([
      fetchJSON("/api/tickers/" + ticker + "/metrics"),
      fetchJSON(valuationURL),
    ]);
    renderTable(document.getElementById("metrics"), metrics, "Metric");
    renderTable(document.getElementById("valuation"), valuation, "Valuation");

    const img = document.createElement("img");
    img.alt = ticker + " price chart";
    img.src = "/api/tickers/" + ticker + "/chart.png?t=" + Date.now();
    document.getElementById("chart").appendChild(img);

    status.textContent = ticker + " Dashboard";
  } catch (err) {
    status.className = "error";
    status.textContent = "Error: " + err.message;
  } finally {
    button.disabled = false;
  }
}

document.getElementById("fetch").addEventListener("click", update);
document.getElementById("ticker").addEventListener("keydown", (e) => {
  if (e.key === "Enter") update();
});
</script>
</body>
</html>
`
